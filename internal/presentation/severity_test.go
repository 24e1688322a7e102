package presentation

import "testing"

func TestClassifyKnownSeverities(t *testing.T) {
	cases := []struct {
		in         string
		color      string
		background string
	}{
		{in: "high", color: "red", background: "light-red"},
		{in: "medium", color: "amber", background: "light-amber"},
		{in: "low", color: "blue", background: "light-blue"},
		{in: " HIGH ", color: "red", background: "light-red"},
	}
	for _, tc := range cases {
		got := Classify(tc.in)
		if got.Color != tc.color || got.Background != tc.background {
			t.Fatalf("Classify(%q) = %+v, want %s/%s", tc.in, got, tc.color, tc.background)
		}
	}
}

func TestClassifyIsTotalAndIdempotent(t *testing.T) {
	inputs := []string{"", "critical", "info", "hígh", "medium ", "\x00", "neutral"}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		if first != second {
			t.Fatalf("Classify(%q) not idempotent: %+v vs %+v", in, first, second)
		}
		if first.Color == "" || first.Background == "" {
			t.Fatalf("Classify(%q) returned empty tokens", in)
		}
	}
	if got := Classify("critical"); got.Category != CategoryNeutral || got.Color != "neutral-gray" || got.Background != "default" {
		t.Fatalf("unknown severity must be neutral, got %+v", got)
	}
}
