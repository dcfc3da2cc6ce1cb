package identify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const lookupResponse = `{
	"status": "ok",
	"results": [{
		"score": 0.98,
		"recordings": [{
			"id": "rec-1",
			"title": "Sinnerman",
			"artists": [{"name": "Nina Simone"}],
			"releasegroups": [{"title": "Pastel Blues"}]
		}]
	}]
}`

func TestAcoustIDLookup(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client":      q.Get("client"),
			"fingerprint": q.Get("fingerprint"),
			"duration":    q.Get("duration"),
		}
		w.Write([]byte(lookupResponse))
	}))
	defer srv.Close()

	a := &AcoustID{APIKey: "key123", BaseURL: srv.URL}
	rec, id, err := a.Lookup(context.Background(), "AQAA...", 213.7)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	if gotQuery["client"] != "key123" || gotQuery["fingerprint"] != "AQAA..." || gotQuery["duration"] != "213" {
		t.Errorf("query = %v", gotQuery)
	}
	if id != "rec-1" {
		t.Errorf("recording ID = %q", id)
	}
	if rec == nil || rec.Artist != "Nina Simone" || rec.Album != "Pastel Blues" || rec.Title != "Sinnerman" {
		t.Errorf("record = %+v", rec)
	}
}

func TestAcoustIDLookupNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ok", "results": []}`))
	}))
	defer srv.Close()

	a := &AcoustID{APIKey: "key123", BaseURL: srv.URL}
	rec, id, err := a.Lookup(context.Background(), "AQAA...", 100)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec != nil || id != "" {
		t.Errorf("no-match lookup = %+v, %q", rec, id)
	}
}

func TestAcoustIDLookupErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		a := &AcoustID{APIKey: "key123", BaseURL: srv.URL}
		if _, _, err := a.Lookup(context.Background(), "AQAA...", 100); err == nil {
			t.Error("expected error for HTTP 500")
		}
	})

	t.Run("error status in payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status": "error"}`))
		}))
		defer srv.Close()

		a := &AcoustID{APIKey: "key123", BaseURL: srv.URL}
		if _, _, err := a.Lookup(context.Background(), "AQAA...", 100); err == nil {
			t.Error("expected error for non-ok status")
		}
	})
}

func TestParseResponsePartialRecordings(t *testing.T) {
	var payload acoustidResponse
	raw := `{"status": "ok", "results": [{"score": 0.9, "recordings": []}]}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatal(err)
	}

	rec, id, err := ParseResponse(&payload)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if rec != nil || id != "" {
		t.Errorf("empty recordings should yield no match, got %+v", rec)
	}
}
