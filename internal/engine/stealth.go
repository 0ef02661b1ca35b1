package engine

import stealth "github.com/anatolykoptev/go-stealth"

// RandomUserAgent returns a realistic browser User-Agent. Podcast CDNs and some feed
// hosts reject default Go client agents.
func RandomUserAgent() string { return stealth.RandomUserAgent() }
