package engine

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		level string
	}{
		{100, LevelExcellence},
		{90, LevelExcellence},
		{89.9, LevelAvance},
		{75, LevelAvance},
		{74.9, LevelIntermediaire},
		{60, LevelIntermediaire},
		{59.9, LevelBasique},
		{40, LevelBasique},
		{39.9, LevelCritique},
		{0, LevelCritique},
	}
	for _, c := range cases {
		got := Classify(c.score)
		if got.Level != c.level {
			t.Errorf("Classify(%v).Level = %q, want %q", c.score, got.Level, c.level)
		}
		if got.Color == "" || got.Description == "" {
			t.Errorf("Classify(%v) returned incomplete tier: %+v", c.score, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, s := range []float64{0, 39.95, 40, 65.5, 90, 100} {
		if Classify(s) != Classify(s) {
			t.Fatalf("Classify(%v) is not deterministic", s)
		}
	}
}

func TestValidTargetLevel(t *testing.T) {
	for _, lvl := range []string{LevelBasique, LevelIntermediaire, LevelAvance, LevelExcellence} {
		if !ValidTargetLevel(lvl) {
			t.Errorf("ValidTargetLevel(%q) = false, want true", lvl)
		}
	}
	for _, lvl := range []string{LevelCritique, "", "Expert"} {
		if ValidTargetLevel(lvl) {
			t.Errorf("ValidTargetLevel(%q) = true, want false", lvl)
		}
	}
}
