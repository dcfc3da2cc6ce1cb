package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"undisorder/internal/metadata"
)

// RecordingLookup resolves a fingerprint to recording metadata via a
// remote service.
type RecordingLookup interface {
	Lookup(ctx context.Context, fingerprint string, duration float64) (rec *metadata.AudioRecord, recordingID string, err error)
}

// AcoustID queries the AcoustID web service.
type AcoustID struct {
	APIKey string
	// BaseURL overrides the service endpoint, for tests.
	BaseURL string
	// Client overrides the HTTP client. Nil means a 30s-timeout default.
	Client *http.Client
}

const acoustidURL = "https://api.acoustid.org/v2"

// Lookup asks AcoustID for recordings matching the fingerprint and returns
// the best match. A fingerprint with no match returns (nil, "", nil).
func (a *AcoustID) Lookup(ctx context.Context, fingerprint string, duration float64) (*metadata.AudioRecord, string, error) {
	base := a.BaseURL
	if base == "" {
		base = acoustidURL
	}
	q := url.Values{}
	q.Set("client", a.APIKey)
	q.Set("meta", "recordings releasegroups")
	q.Set("duration", fmt.Sprintf("%d", int(duration)))
	q.Set("fingerprint", fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/lookup?"+q.Encode(), nil)
	if err != nil {
		return nil, "", err
	}

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("acoustid request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("acoustid status %d", resp.StatusCode)
	}

	var payload acoustidResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", fmt.Errorf("parsing acoustid response: %w", err)
	}
	return ParseResponse(&payload)
}

type acoustidResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			ReleaseGroups []struct {
				Title string `json:"title"`
			} `json:"releasegroups"`
		} `json:"recordings"`
	} `json:"results"`
}

// ParseResponse extracts the first recording from an AcoustID lookup
// response. Missing pieces degrade to empty fields, not errors.
func ParseResponse(payload *acoustidResponse) (*metadata.AudioRecord, string, error) {
	if payload.Status != "ok" {
		return nil, "", fmt.Errorf("acoustid status %q", payload.Status)
	}
	if len(payload.Results) == 0 || len(payload.Results[0].Recordings) == 0 {
		return nil, "", nil
	}

	recording := payload.Results[0].Recordings[0]
	rec := &metadata.AudioRecord{Title: recording.Title}
	if len(recording.Artists) > 0 {
		rec.Artist = recording.Artists[0].Name
	}
	if len(recording.ReleaseGroups) > 0 {
		rec.Album = recording.ReleaseGroups[0].Title
	}
	return rec, recording.ID, nil
}
