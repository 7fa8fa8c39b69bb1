package engine

import (
	"errors"
	"fmt"
	"math"
)

// Category is one of the four PDCA phases used to bucket questions and tasks.
type Category string

const (
	CategoryPlan  Category = "Plan"
	CategoryDo    Category = "Do"
	CategoryCheck Category = "Check"
	CategoryAct   Category = "Act"
)

// Categories lists the PDCA phases in canonical order.
var Categories = []Category{CategoryPlan, CategoryDo, CategoryCheck, CategoryAct}

func (c Category) IsValid() bool {
	switch c {
	case CategoryPlan, CategoryDo, CategoryCheck, CategoryAct:
		return true
	}
	return false
}

// ResponseValue is an answer to a questionnaire item. An empty value means the
// question was left unanswered.
type ResponseValue string

const (
	ResponseOui           ResponseValue = "Oui"
	ResponseNon           ResponseValue = "Non"
	ResponsePartiellement ResponseValue = "Partiellement"
)

func (r ResponseValue) IsValid() bool {
	switch r {
	case ResponseOui, ResponseNon, ResponsePartiellement:
		return true
	}
	return false
}

var (
	ErrInvalidResponseValue = errors.New("réponse invalide (attendu: Oui, Non ou Partiellement)")
	ErrInvalidWeight        = errors.New("le poids d'une question doit être strictement positif")
)

// ResponseInput is one raw answer as supplied by the caller.
type ResponseInput struct {
	QuestionID   string
	QuestionText string
	Category     Category
	Clause       string
	Weight       float64
	Critical     bool
	Response     ResponseValue
}

// ScoredResponse carries the input plus its derived score (0 ≤ Score ≤ Weight).
type ScoredResponse struct {
	ResponseInput
	Score float64
}

// NonConformity is a critical question answered negatively.
type NonConformity struct {
	Question string   `json:"question"`
	Clause   string   `json:"clause"`
	Impact   string   `json:"impact"`
	Category Category `json:"category"`
}

// ScoreResult is the full derived state of a questionnaire. All fields are
// recomputed together; none is ever patched independently.
type ScoreResult struct {
	Responses            []ScoredResponse
	OverallScore         float64
	CategoryScores       map[Category]int
	MaturityLevel        MaturityLevel
	TotalQuestions       int
	AnsweredQuestions    int
	MajorNonConformities []NonConformity
}

// Score derives per-response scores and questionnaire-level rollups from a raw
// response set. Pure: identical input yields identical output, no clock, no I/O.
//
// Per response: Oui scores the full weight, Partiellement half, Non zero. An
// empty response counts as unanswered and scores zero but its weight still
// enters the denominators. The maturity level is Classify(overall), capped at
// Critique when at least one major non-conformity is present.
func Score(responses []ResponseInput) (*ScoreResult, error) {
	scored := make([]ScoredResponse, 0, len(responses))
	var totalWeight, totalScore float64
	catWeight := make(map[Category]float64, len(Categories))
	catScore := make(map[Category]float64, len(Categories))
	answered := 0
	var nonConformities []NonConformity

	for i, in := range responses {
		if in.Weight <= 0 {
			return nil, fmt.Errorf("réponse %d (%s): %w", i, in.QuestionID, ErrInvalidWeight)
		}
		var s float64
		switch in.Response {
		case ResponseOui:
			s = in.Weight
		case ResponsePartiellement:
			s = in.Weight * 0.5
		case ResponseNon, "":
			s = 0
		default:
			return nil, fmt.Errorf("réponse %d (%s): %q: %w", i, in.QuestionID, in.Response, ErrInvalidResponseValue)
		}
		if in.Response != "" {
			answered++
		}
		totalWeight += in.Weight
		totalScore += s
		catWeight[in.Category] += in.Weight
		catScore[in.Category] += s
		if in.Critical && in.Response == ResponseNon {
			nonConformities = append(nonConformities, NonConformity{
				Question: in.QuestionText,
				Clause:   in.Clause,
				Impact:   nonConformityImpact(in.Clause),
				Category: in.Category,
			})
		}
		scored = append(scored, ScoredResponse{ResponseInput: in, Score: s})
	}

	overall := 0.0
	if totalWeight > 0 {
		// one decimal, half-up
		overall = math.Round(totalScore/totalWeight*100*10) / 10
	}
	catScores := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		catScores[c] = 0
		if catWeight[c] > 0 {
			catScores[c] = int(math.Round(catScore[c] / catWeight[c] * 100))
		}
	}

	// Une non-conformité majeure plafonne le niveau à Critique, quel que soit
	// le score numérique.
	level := Classify(overall)
	if len(nonConformities) > 0 {
		level = lowestTier()
	}

	return &ScoreResult{
		Responses:            scored,
		OverallScore:         overall,
		CategoryScores:       catScores,
		MaturityLevel:        level,
		TotalQuestions:       len(responses),
		AnsweredQuestions:    answered,
		MajorNonConformities: nonConformities,
	}, nil
}

func nonConformityImpact(clause string) string {
	if clause == "" {
		return "Non-conformité majeure : une exigence essentielle du SMSI n'est pas satisfaite, exposant l'organisation à un risque de sécurité élevé."
	}
	return fmt.Sprintf("Non-conformité majeure à l'exigence %s : action corrective prioritaire requise pour réduire le risque de sécurité.", clause)
}
