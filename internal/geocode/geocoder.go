// Package geocode resolves GPS coordinates to place names.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Mode selects the geocoding backend.
type Mode string

const (
	ModeOff    Mode = "off"
	ModeOnline Mode = "online"
)

// ValidMode reports whether s names a supported geocoding mode.
func ValidMode(s string) bool {
	return Mode(s) == ModeOff || Mode(s) == ModeOnline
}

// Geocoder resolves coordinates to a short place name. An empty result
// means "no name available"; errors are for transport-level failures the
// caller may want to log. Either way the caller degrades to no place name.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Null is the disabled geocoder.
type Null struct{}

func (Null) Reverse(context.Context, float64, float64) (string, error) { return "", nil }

// Nominatim reverse-geocodes via the OpenStreetMap Nominatim service.
// Results are cached per rounded coordinate and requests are throttled to
// one per second, per the service's usage policy.
type Nominatim struct {
	// BaseURL overrides the service endpoint, for tests.
	BaseURL string
	// Client overrides the HTTP client. Nil means a 10s-timeout default.
	Client *http.Client

	mu    sync.Mutex
	cache map[string]string
	last  time.Time
}

const nominatimURL = "https://nominatim.openstreetmap.org"

func (g *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	g.mu.Lock()
	if g.cache == nil {
		g.cache = make(map[string]string)
	}
	if name, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return name, nil
	}
	// Politeness throttle: at most one request per second.
	if wait := time.Second - time.Since(g.last); wait > 0 && !g.last.IsZero() {
		g.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		g.mu.Lock()
	}
	g.last = time.Now()
	g.mu.Unlock()

	name, err := g.lookup(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.cache[key] = name
	g.mu.Unlock()
	return name, nil
}

func (g *Nominatim) lookup(ctx context.Context, lat, lon float64) (string, error) {
	base := g.BaseURL
	if base == "" {
		base = nominatimURL
	}
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "undisorder/1.0")

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var payload struct {
		Address map[string]string `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parsing nominatim response: %w", err)
	}
	return PlaceFromAddress(payload.Address), nil
}

// PlaceFromAddress picks the most specific settlement name from a
// Nominatim address object, falling back to the country.
func PlaceFromAddress(addr map[string]string) string {
	for _, key := range []string{"city", "town", "village", "municipality"} {
		if addr[key] != "" {
			return addr[key]
		}
	}
	return addr["country"]
}

// New returns the geocoder for the given mode.
func New(mode Mode) Geocoder {
	if mode == ModeOnline {
		return &Nominatim{}
	}
	return Null{}
}
