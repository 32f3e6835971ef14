package app

import (
	"context"
	"fmt"

	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/metrics"
	"github.com/groundsync/groundsync-be/model"
)

type ValidationStatus string

const (
	ValidationPending            ValidationStatus = "PENDING"
	ValidationValid              ValidationStatus = "VALID"
	ValidationInvalid            ValidationStatus = "INVALID"
	ValidationServiceUnavailable ValidationStatus = "SERVICE_UNAVAILABLE"
)

// MaxGeocoderCandidates is how many matches are requested per lookup.
const MaxGeocoderCandidates = 5

type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]*model.PlaceCandidate, error)
}

type ValidationResult struct {
	Name   string           `json:"name"`
	Status ValidationStatus `json:"status"`
	// Match is the first accepted candidate, if any.
	Match *model.PlaceCandidate `json:"match,omitempty"`
}

// Accepted is true only for VALID. A name that could not be checked is never accepted.
func (vr *ValidationResult) Accepted() bool {
	return vr.Status == ValidationValid
}

// Err is nil for an accepted name, otherwise an ErrValidationFailure carrying a message for the user.
func (vr *ValidationResult) Err() error {
	if vr.Accepted() {
		return nil
	}
	return fmt.Errorf("%w: %q could not be verified as a real location. "+
		"Please enter a valid city, neighborhood, or landmark", ErrValidationFailure, vr.Name)
}

type LocationValidator struct {
	geocoder Geocoder
}

func NewLocationValidator(geocoder Geocoder) *LocationValidator {
	return &LocationValidator{geocoder: geocoder}
}

func (lv *LocationValidator) Validate(ctx context.Context, name string) *ValidationResult {
	result := &ValidationResult{Name: name, Status: ValidationPending}
	defer func() {
		metrics.LocationValidations.WithLabelValues(string(result.Status)).Inc()
	}()

	if lv.geocoder == nil {
		result.Status = ValidationServiceUnavailable
		return result
	}
	candidates, err := lv.geocoder.Search(ctx, name, MaxGeocoderCandidates)
	if err != nil {
		logging.Warn().Err(fmt.Errorf("%w: %w", ErrServiceUnavailable, err)).Str("name", name).Msg("location validation failed closed")
		result.Status = ValidationServiceUnavailable
		return result
	}

	result.Status = ValidationInvalid
	for _, candidate := range candidates {
		if IsAcceptedPlace(candidate) {
			result.Status = ValidationValid
			result.Match = candidate
			break
		}
	}
	logging.Debug().Str("name", name).Int("candidates", len(candidates)).Str("status", string(result.Status)).Msg("location validated")
	return result
}

var (
	acceptedLeisure = map[string]bool{
		"park":              true,
		"stadium":           true,
		"playground":        true,
		"recreation_ground": true,
		"garden":            true,
		"nature_reserve":    true,
	}
	acceptedAmenities = map[string]bool{
		"university":       true,
		"college":          true,
		"school":           true,
		"library":          true,
		"hospital":         true,
		"community_centre": true,
		"public_building":  true,
		"townhall":         true,
		"place_of_worship": true,
	}
)

// IsAcceptedPlace reports whether a geocoder match is the kind of place people post about:
// settlements, administrative areas, parks, public institutions, attractions and natural features.
func IsAcceptedPlace(candidate *model.PlaceCandidate) bool {
	switch candidate.Class {
	case "place", "tourism", "natural":
		return true
	case "boundary":
		return candidate.Type == "administrative"
	case "leisure":
		return acceptedLeisure[candidate.Type]
	case "amenity":
		return acceptedAmenities[candidate.Type]
	default:
		return false
	}
}
