package engine

// MaturityLevel describes the tier an overall score falls into.
type MaturityLevel struct {
	Level       string `json:"level"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Tier names, ordered from lowest to highest. These double as the valid
// values for a roadmap's target maturity level.
const (
	LevelCritique      = "Critique"
	LevelBasique       = "Basique"
	LevelIntermediaire = "Intermédiaire"
	LevelAvance        = "Avancé"
	LevelExcellence    = "Excellence"
)

// maturityTiers is scanned top-down; first lower bound at or below the score wins.
var maturityTiers = []struct {
	min   float64
	level MaturityLevel
}{
	{90, MaturityLevel{Level: LevelExcellence, Color: "success", Description: "SMSI mature et robuste"}},
	{75, MaturityLevel{Level: LevelAvance, Color: "info", Description: "SMSI bien structuré"}},
	{60, MaturityLevel{Level: LevelIntermediaire, Color: "warning", Description: "SMSI en cours de développement"}},
	{40, MaturityLevel{Level: LevelBasique, Color: "secondary", Description: "SMSI en phase initiale"}},
	{0, MaturityLevel{Level: LevelCritique, Color: "danger", Description: "SMSI nécessitant une attention immédiate"}},
}

// Classify maps an overall score (0–100) to its maturity tier. Deterministic and
// total: anything below the lowest bound still resolves to Critique.
func Classify(score float64) MaturityLevel {
	for _, t := range maturityTiers {
		if score >= t.min {
			return t.level
		}
	}
	return maturityTiers[len(maturityTiers)-1].level
}

// lowestTier is the Critique tier, used when a major non-conformity caps the
// classification regardless of the numeric score.
func lowestTier() MaturityLevel {
	return maturityTiers[len(maturityTiers)-1].level
}

// ValidTargetLevel reports whether s names a tier a roadmap may target.
// Critique is excluded: it is a diagnosis, not a goal.
func ValidTargetLevel(s string) bool {
	switch s {
	case LevelBasique, LevelIntermediaire, LevelAvance, LevelExcellence:
		return true
	}
	return false
}
