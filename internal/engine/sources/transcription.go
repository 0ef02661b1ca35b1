package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// Deepgram prerecorded transcription over the REST API.

// Deepgram submits whole audio files for transcription.
type Deepgram struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

// NewDeepgram builds a client from the engine config. A missing key is reported at
// Transcribe time, not here, so the server can start without one.
func NewDeepgram(cfg *engine.Config) *Deepgram {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Deepgram{
		apiKey:  cfg.DeepgramAPIKey,
		apiBase: strings.TrimRight(cfg.DeepgramAPIBase, "/"),
		model:   cfg.DeepgramModel,
		client:  client,
	}
}

type dgResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrCode string `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// Transcribe reads audioPath fully into memory and sends it as a single request.
// Returns the first alternative of the first channel, or "" when absent.
func (d *Deepgram) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if d.apiKey == "" {
		return "", &engine.ConfigError{
			Setting: "Deepgram API key",
			Hint:    "set DEEPGRAM_API_KEY or deepgramApiKey in config.json",
		}
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	engine.IncrTranscription()
	text, err := d.submit(ctx, audio, contentType(audioPath))
	if err != nil {
		engine.IncrTranscriptionError()
		return "", err
	}
	return text, nil
}

func (d *Deepgram) submit(ctx context.Context, audio []byte, ctype string) (string, error) {
	params := url.Values{}
	params.Set("model", d.model)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	params.Set("paragraphs", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiBase+"/listen?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", ctype)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &engine.ServiceError{Service: "deepgram", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &engine.ServiceError{Service: "deepgram", StatusCode: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	var out dgResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.ErrMsg
		if msg == "" {
			msg = engine.TruncateRunes(strings.TrimSpace(string(body)), 500, "...")
		}
		return "", &engine.ServiceError{Service: "deepgram", StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &engine.ServiceError{Service: "deepgram", StatusCode: resp.StatusCode, Message: "decode response: " + decodeErr.Error()}
	}
	if out.ErrMsg != "" {
		return "", &engine.ServiceError{Service: "deepgram", StatusCode: resp.StatusCode, Message: out.ErrMsg}
	}

	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return out.Results.Channels[0].Alternatives[0].Transcript, nil
}

func contentType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "audio/") {
		return t
	}
	return "audio/mpeg"
}
