package model

import "testing"

func TestBusiness_CanBeEditedBy(t *testing.T) {
	business := &Business{
		Name:    "biz1",
		Owner:   "owner",
		Editors: []string{"editor", "other"},
	}

	tests := []struct {
		identity string
		want     bool
	}{
		{"owner", true},
		{"editor", true},
		{"other", true},
		{"stranger", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := business.CanBeEditedBy(tt.identity); got != tt.want {
			t.Errorf("CanBeEditedBy(%q) = %v, want %v", tt.identity, got, tt.want)
		}
	}
}
