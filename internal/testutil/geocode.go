package testutil

import (
	"context"
	"fmt"
	"sync"
)

// StubGeocoder resolves canned place names keyed by "%.4f,%.4f" rounded
// coordinates and counts lookups.
type StubGeocoder struct {
	Places map[string]string
	Err    error

	mu    sync.Mutex
	calls int
}

func (g *StubGeocoder) Reverse(_ context.Context, lat, lon float64) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	return g.Places[fmt.Sprintf("%.4f,%.4f", lat, lon)], nil
}

// Calls returns how many lookups were made.
func (g *StubGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
