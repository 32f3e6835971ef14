package model

// PlaceCandidate is one match returned by the geocoder for a free-text place name.
type PlaceCandidate struct {
	Class       string `json:"class"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}
