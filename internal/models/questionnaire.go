package models

import (
	"time"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
)

// QuestionnaireStatus lifecycle: draft -> completed -> archived.
type QuestionnaireStatus string

const (
	QuestionnaireDraft     QuestionnaireStatus = "draft"
	QuestionnaireCompleted QuestionnaireStatus = "completed"
	QuestionnaireArchived  QuestionnaireStatus = "archived"
)

func (s QuestionnaireStatus) IsValid() bool {
	switch s {
	case QuestionnaireDraft, QuestionnaireCompleted, QuestionnaireArchived:
		return true
	}
	return false
}

// Questionnaire is an assessment submission with its derived scoring state.
// The derived columns (scores, maturity level, non-conformities, counts) are
// only ever written together by the scoring service; they are never patched
// independently of the response rows.
type Questionnaire struct {
	ID                   uint                    `gorm:"primaryKey" json:"id"`
	UserID               uint                    `gorm:"not null;index" json:"userId"`
	Responses            []QuestionResponse      `gorm:"foreignKey:QuestionnaireID" json:"responses"`
	OverallScore         float64                 `json:"overallScore"`
	CategoryScores       map[engine.Category]int `gorm:"serializer:json" json:"categoryScores"`
	MaturityLevel        engine.MaturityLevel    `gorm:"serializer:json" json:"maturityLevel"`
	MajorNonConformities []engine.NonConformity  `gorm:"serializer:json" json:"majorNonConformities"`
	TotalQuestions       int                     `json:"totalQuestions"`
	AnsweredQuestions    int                     `json:"answeredQuestions"`
	CompletionTime       int                     `json:"completionTime"` // secondes
	Status               QuestionnaireStatus     `gorm:"not null;default:'completed'" json:"status"`
	Notes                string                  `json:"notes"`
	Tags                 []string                `gorm:"serializer:json" json:"tags"`
	CreatedAt            time.Time               `json:"createdAt"`
	UpdatedAt            time.Time               `json:"updatedAt"`
}

// GetUserID implements policy.Ownable.
func (q *Questionnaire) GetUserID() uint { return q.UserID }

// QuestionResponse is one answered question, owned by its questionnaire.
// Score is derived (0 ≤ score ≤ weight) and set only by the scoring engine.
type QuestionResponse struct {
	ID              uint                 `gorm:"primaryKey" json:"-"`
	QuestionnaireID uint                 `gorm:"not null;index" json:"-"`
	QuestionID      string               `gorm:"not null" json:"questionId"`
	QuestionText    string               `json:"questionText"`
	Category        engine.Category      `gorm:"not null;index" json:"category"`
	Clause          string               `json:"clause"`
	Weight          float64              `gorm:"not null" json:"weight"`
	Critical        bool                 `json:"critical"`
	Response        engine.ResponseValue `json:"response"`
	Score           float64              `json:"score"`
	Position        int                  `gorm:"not null" json:"-"` // ordre de soumission
}

// Question is the seeded catalog entry served to clients building a submission.
type Question struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	QuestionID string          `gorm:"unique;not null" json:"questionId"`
	Text       string          `gorm:"not null" json:"questionText"`
	Category   engine.Category `gorm:"not null;index" json:"category"`
	Clause     string          `json:"clause"`
	Weight     float64         `gorm:"not null" json:"weight"`
	Critical   bool            `json:"critical"`
	Position   int             `gorm:"not null" json:"-"`
}
