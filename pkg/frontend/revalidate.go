package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client pings the static frontend's on-demand revalidation endpoint so a
// published page is regenerated.
type Client struct {
	url    string
	secret string
	http   *http.Client
}

func NewClient(url, secret string) *Client {
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Revalidate asks the frontend to regenerate the page at path.
func (c *Client) Revalidate(path string) error {
	payload, err := json.Marshal(map[string]string{
		"path":   path,
		"secret": c.secret,
	})
	if err != nil {
		return fmt.Errorf("failed to encode revalidation payload: %v", err)
	}

	resp, err := c.http.Post(c.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("revalidation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("revalidation returned status %d", resp.StatusCode)
	}
	return nil
}
