// Package rpcclient talks to the external transcoding worker over HTTP JSON.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/config"
)

type convertRequest struct {
	SourcePath string `json:"source_path"`
}

type convertResponse struct {
	OutputPath string `json:"output_path"`
	Error      string `json:"error,omitempty"`
}

// Client issues conversion calls against the transcoding worker. Calls are
// fire-and-forget-with-result: one request, one produced file path.
type Client struct {
	addr   string
	client *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		addr:   cfg.Transcoder.Addr,
		client: &http.Client{Timeout: cfg.Transcoder.Timeout},
	}
}

// ConvertVideoToWav asks the worker to extract mono 16 kHz PCM audio from the
// video at sourcePath and returns the path of the produced wav. Both paths
// are store-shared paths reachable by every worker.
func (c *Client) ConvertVideoToWav(ctx context.Context, sourcePath string) (string, error) {
	body, err := json.Marshal(convertRequest{SourcePath: sourcePath})
	if err != nil {
		return "", errors.Wrap(err, "rpcclient.ConvertVideoToWav.Marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/convert/wav", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "rpcclient.ConvertVideoToWav.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "rpcclient.ConvertVideoToWav.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.Errorf("rpcclient.ConvertVideoToWav: status %d: %s", resp.StatusCode, payload)
	}
	var out convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "rpcclient.ConvertVideoToWav.Decode")
	}
	if out.Error != "" {
		return "", errors.Errorf("rpcclient.ConvertVideoToWav: worker error: %s", out.Error)
	}
	if out.OutputPath == "" {
		return "", errors.New("rpcclient.ConvertVideoToWav: empty output path")
	}
	return out.OutputPath, nil
}
