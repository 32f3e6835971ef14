package app

import (
	"context"
	"errors"
	"testing"

	"github.com/groundsync/groundsync-be/model"
)

type fakeGeocoder struct {
	candidates []*model.PlaceCandidate
	err        error
	queries    []string
}

func (fg *fakeGeocoder) Search(ctx context.Context, query string, limit int) ([]*model.PlaceCandidate, error) {
	fg.queries = append(fg.queries, query)
	return fg.candidates, fg.err
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		geocoder     *fakeGeocoder
		wantStatus   ValidationStatus
		wantAccepted bool
	}{
		{
			name:         "city",
			geocoder:     &fakeGeocoder{candidates: []*model.PlaceCandidate{{Class: "place", Type: "city", DisplayName: "Paris"}}},
			wantStatus:   ValidationValid,
			wantAccepted: true,
		},
		{
			name:       "no candidates",
			geocoder:   &fakeGeocoder{},
			wantStatus: ValidationInvalid,
		},
		{
			name:       "only rejected candidates",
			geocoder:   &fakeGeocoder{candidates: []*model.PlaceCandidate{{Class: "highway", Type: "primary"}, {Class: "building", Type: "house"}}},
			wantStatus: ValidationInvalid,
		},
		{
			name: "any accepted candidate wins",
			geocoder: &fakeGeocoder{candidates: []*model.PlaceCandidate{
				{Class: "highway", Type: "primary"},
				{Class: "leisure", Type: "park"},
			}},
			wantStatus:   ValidationValid,
			wantAccepted: true,
		},
		{
			name:       "service failure fails closed",
			geocoder:   &fakeGeocoder{err: errors.New("connection refused")},
			wantStatus: ValidationServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewLocationValidator(tt.geocoder).Validate(context.Background(), "Paris")
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", result.Status, tt.wantStatus)
			}
			if result.Accepted() != tt.wantAccepted {
				t.Errorf("Accepted() = %v, want %v", result.Accepted(), tt.wantAccepted)
			}
			if err := result.Err(); tt.wantAccepted != (err == nil) {
				t.Errorf("Err() = %v", err)
			} else if err != nil && !errors.Is(err, ErrValidationFailure) {
				t.Errorf("Err() = %v, want ErrValidationFailure", err)
			}
		})
	}
}

func TestValidateWithoutGeocoder(t *testing.T) {
	result := NewLocationValidator(nil).Validate(context.Background(), "Paris")
	if result.Accepted() {
		t.Fatal("validation without a geocoder must not accept")
	}
}

func TestIsAcceptedPlace(t *testing.T) {
	tests := []struct {
		class, placeType string
		want             bool
	}{
		{"place", "city", true},
		{"place", "hamlet", true},
		{"boundary", "administrative", true},
		{"boundary", "postal_code", false},
		{"leisure", "park", true},
		{"leisure", "nature_reserve", true},
		{"leisure", "fitness_centre", false},
		{"amenity", "university", true},
		{"amenity", "place_of_worship", true},
		{"amenity", "restaurant", false},
		{"tourism", "museum", true},
		{"natural", "peak", true},
		{"highway", "residential", false},
		{"building", "yes", false},
	}
	for _, tt := range tests {
		t.Run(tt.class+"/"+tt.placeType, func(t *testing.T) {
			if got := IsAcceptedPlace(&model.PlaceCandidate{Class: tt.class, Type: tt.placeType}); got != tt.want {
				t.Errorf("IsAcceptedPlace() = %v, want %v", got, tt.want)
			}
		})
	}
}
