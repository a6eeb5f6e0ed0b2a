package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/config"
)

type recognizeRequest struct {
	AudioPath string `json:"audio_path"`
	Language  string `json:"language"`
}

type recognizeResponse struct {
	Spans []Span `json:"spans"`
	Error string `json:"error,omitempty"`
}

// httpRecognizer calls the recognition service over HTTP JSON.
type httpRecognizer struct {
	addr   string
	client *http.Client
}

func NewHTTPRecognizer(cfg *config.Config) Recognizer {
	return &httpRecognizer{
		addr:   cfg.Recognizer.Addr,
		client: &http.Client{Timeout: cfg.Recognizer.Timeout},
	}
}

func (r *httpRecognizer) Recognize(ctx context.Context, audioPath, language string) ([]Span, error) {
	body, err := json.Marshal(recognizeRequest{AudioPath: audioPath, Language: language})
	if err != nil {
		return nil, errors.Wrap(err, "recognizer.Recognize.Marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.addr+"/recognize", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "recognizer.Recognize.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "recognizer.Recognize.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Errorf("recognizer.Recognize: status %d: %s", resp.StatusCode, payload)
	}
	var out recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "recognizer.Recognize.Decode")
	}
	if out.Error != "" {
		return nil, errors.Errorf("recognizer.Recognize: service error: %s", out.Error)
	}
	return out.Spans, nil
}
