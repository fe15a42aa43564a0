package annotation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeneMetadata is the descriptive record returned for one canonical id.
// Any field may be empty when the upstream source has no data; callers
// render missing fields as an explicit "unavailable" marker.
type GeneMetadata struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// MetadataClient fetches descriptive gene metadata from an HTTP service.
type MetadataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMetadataClient creates a metadata client for the given base URL.
func NewMetadataClient(baseURL string) *MetadataClient {
	return &MetadataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns metadata for a batch of canonical ids. Partial results
// are expected: ids the service does not know are simply absent from the
// returned map.
func (c *MetadataClient) Fetch(ctx context.Context, ids []string) (map[string]GeneMetadata, error) {
	if len(ids) == 0 {
		return map[string]GeneMetadata{}, nil
	}

	u := fmt.Sprintf("%s/genes?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metadata service error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Genes map[string]GeneMetadata `json:"genes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}

	for id, meta := range payload.Genes {
		if meta.ID == "" {
			meta.ID = id
			payload.Genes[id] = meta
		}
	}
	return payload.Genes, nil
}
