package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/metrics"
	"github.com/groundsync/groundsync-be/model"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type GeocoderOpts struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// NominatimGeocoder searches OpenStreetMap's Nominatim. Requests are throttled to the configured
// rate and short-circuited while the service keeps failing.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]*model.PlaceCandidate]
}

func NewNominatimGeocoder(opts *GeocoderOpts) *NominatimGeocoder {
	cb := gobreaker.NewCircuitBreaker[[]*model.PlaceCandidate](gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.GeocoderBreakerState.Set(breakerStateValue(to))
		},
	})
	return &NominatimGeocoder{
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		cb:        cb,
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Search returns up to limit candidates, in the service's ranking order.
func (g *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]*model.PlaceCandidate, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	candidates, err := g.cb.Execute(func() ([]*model.PlaceCandidate, error) {
		return g.search(ctx, query, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("geocoder unavailable: %w", err)
	}
	return candidates, err
}

func (g *NominatimGeocoder) search(ctx context.Context, query string, limit int) ([]*model.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var candidates []*model.PlaceCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	return candidates, nil
}
