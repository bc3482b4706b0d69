package probe

import (
	"context"
	"fmt"
	"net/http"
)

// HTTP reports ready once a GET to URL returns a status below 400.
type HTTP struct {
	URL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

func (h HTTP) Check(ctx context.Context) error {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return fmt.Errorf("build request for %q: %w", h.URL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %q: %w", h.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("get %q: status %d", h.URL, resp.StatusCode)
	}
	return nil
}
