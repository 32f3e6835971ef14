package model

import "testing"

func TestFollowKey(t *testing.T) {
	tests := []struct {
		userId, locationId string
		want               string
	}{
		{"u1", "loc1", "u1_loc1"},
		{"a_b", "c", "a%5Fb_c"},
		{"a", "b_c", "a_b%5Fc"},
		{"100%", "x", "100%25_x"},
	}
	seen := map[string]bool{}
	for _, tt := range tests {
		got := FollowKey(tt.userId, tt.locationId)
		if got != tt.want {
			t.Errorf("FollowKey(%q, %q) = %q, want %q", tt.userId, tt.locationId, got, tt.want)
		}
		if seen[got] {
			t.Errorf("FollowKey(%q, %q) = %q collides with an earlier pair", tt.userId, tt.locationId, got)
		}
		seen[got] = true
	}
}
