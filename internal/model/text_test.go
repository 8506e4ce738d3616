package model

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Wine shipment, 500 cases", "wine shipment 500 cases"},
		{"  BEER!!  ", "beer"},
		{"Pork-rinds/snacks", "pork rinds snacks"},
		{"Café Crème", "café crème"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEquipment(t *testing.T) {
	for _, in := range []string{"Dry Van", "dry-van", "DRY_VAN", " dry  van "} {
		if got := NormalizeEquipment(in); got != "dry_van" {
			t.Errorf("NormalizeEquipment(%q) = %q", in, got)
		}
	}
}

func TestNegotiationStatus_IsTerminal(t *testing.T) {
	if NegotiationInProgress.IsTerminal() {
		t.Error("IN_PROGRESS must not be terminal")
	}
	if !NegotiationAccepted.IsTerminal() || !NegotiationWalkedAway.IsTerminal() {
		t.Error("ACCEPTED and WALKED_AWAY must be terminal")
	}
}
