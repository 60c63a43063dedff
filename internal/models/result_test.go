package models

import "testing"

func TestChannelString(t *testing.T) {
	want := []string{"red", "green", "blue"}
	for i, ch := range Channels {
		if ch.String() != want[i] {
			t.Errorf("Expected %s, got %s", want[i], ch.String())
		}
	}
	if Channel(7).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", Channel(7).String())
	}
}

func TestRateResultDensity(t *testing.T) {
	r := RateResult{Kept: 3, Total: 12}
	if r.Density() != 0.25 {
		t.Errorf("Expected density 0.25, got %f", r.Density())
	}

	if (RateResult{}).Density() != 0 {
		t.Errorf("Expected zero density for an empty result")
	}
}
