package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundsync_posts_created_total",
		Help: "Posts created, including seeded ones",
	})

	LocationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundsync_locations_created_total",
		Help: "Locations created by ensure",
	})

	HypeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundsync_hype_toggles_total",
		Help: "Hype toggles by resulting state",
	}, []string{"state"}) // "hyped", "unhyped"

	LocationValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundsync_location_validations_total",
		Help: "Location validations by outcome",
	}, []string{"status"})

	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundsync_media_uploads_total",
		Help: "Discussion media uploads by result",
	}, []string{"result"}) // "success", "failure", "timeout"

	DiscussionSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "groundsync_discussion_subscriptions",
		Help: "Live discussion subscriptions currently attached",
	})

	GeocoderBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "groundsync_geocoder_circuit_breaker_state",
		Help: "Geocoder circuit breaker state (0=closed, 1=half-open, 2=open)",
	})
)
