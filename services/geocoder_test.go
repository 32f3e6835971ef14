package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestGeocoder(url string) *NominatimGeocoder {
	return NewNominatimGeocoder(&GeocoderOpts{
		BaseURL:           url,
		UserAgent:         "GroundSync/1.0",
		Timeout:           time.Second,
		RequestsPerSecond: 1000,
	})
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		query := r.URL.Query()
		for key, want := range map[string]string{"format": "json", "q": "Jorhat", "addressdetails": "1", "limit": "5"} {
			if got := query.Get(key); got != want {
				t.Errorf("query %v = %q, want %q", key, got, want)
			}
		}
		if got := r.Header.Get("User-Agent"); got != "GroundSync/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"class":"place","type":"city","display_name":"Jorhat, Assam, India","lat":"26.75"}]`))
	}))
	defer server.Close()

	candidates, err := newTestGeocoder(server.URL).Search(context.Background(), "Jorhat", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Class != "place" || c.Type != "city" || c.DisplayName != "Jorhat, Assam, India" {
		t.Errorf("unexpected candidate %+v", c)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"malformed body", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			if _, err := newTestGeocoder(server.URL).Search(context.Background(), "Jorhat", 5); err == nil {
				t.Fatal("Search() succeeded, want error")
			}
		})
	}
}

func TestSearchBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	geocoder := newTestGeocoder(server.URL)
	for i := 0; i < 10; i++ {
		if _, err := geocoder.Search(context.Background(), "Jorhat", 5); err == nil {
			t.Fatalf("Search() %d succeeded, want error", i)
		}
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("server hit %d times, want 5 before the breaker opens", got)
	}
}

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("groundsync.appspot.com", "discussion_media/p1/1700000000000_a b.png", "tok")
	want := "https://firebasestorage.googleapis.com/v0/b/groundsync.appspot.com/o/discussion_media%2Fp1%2F1700000000000_a%20b.png?alt=media&token=tok"
	if got != want {
		t.Errorf("DownloadURL() = %q, want %q", got, want)
	}
}
