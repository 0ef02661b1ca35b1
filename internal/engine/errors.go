package engine

import "fmt"

// ConfigError reports a missing required setting, such as an API key.
type ConfigError struct {
	Setting string
	Hint    string
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s not configured: %s", e.Setting, e.Hint)
	}
	return e.Setting + " not configured"
}

// FetchError is a failed feed or file download.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError is a failed video metadata lookup or audio extraction.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// AudioNotFoundError means every acquisition path was exhausted.
type AudioNotFoundError struct {
	Title string
}

func (e *AudioNotFoundError) Error() string {
	return fmt.Sprintf("could not find episode on YouTube: %q", e.Title)
}

// ServiceError is an error reported by the transcription service.
type ServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Message)
}
