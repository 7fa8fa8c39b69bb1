package models

import (
	"time"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
)

// RoadmapStatus lifecycle of a remediation plan.
type RoadmapStatus string

const (
	RoadmapDraft     RoadmapStatus = "Draft"
	RoadmapActive    RoadmapStatus = "Active"
	RoadmapOnHold    RoadmapStatus = "On Hold"
	RoadmapCompleted RoadmapStatus = "Completed"
	RoadmapArchived  RoadmapStatus = "Archived"
)

func (s RoadmapStatus) IsValid() bool {
	switch s {
	case RoadmapDraft, RoadmapActive, RoadmapOnHold, RoadmapCompleted, RoadmapArchived:
		return true
	}
	return false
}

// Roadmap is a remediation plan generated from a scored questionnaire.
// Progress is a pure function of the task rows; every task mutation rewrites it
// together with a Version bump (optimistic lock against concurrent writers).
type Roadmap struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	UserID               uint   `gorm:"not null;index" json:"userId"`
	QuestionnaireID      uint   `gorm:"not null;index" json:"questionnaireId"`
	Version              int    `gorm:"not null;default:1" json:"version"`
	Title                string `gorm:"not null" json:"title"`
	Description          string `json:"description"`
	CurrentMaturityLevel string `json:"currentMaturityLevel"`
	TargetMaturityLevel  string `json:"targetMaturityLevel"` // Basique, Intermédiaire, Avancé, Excellence
	EstimatedTimeline    string `json:"estimatedTimeline"`   // 3-6 months, 6-12 months, 1-2 years, 2+ years
	TotalEstimatedCost   string `json:"totalEstimatedCost"`  // Low, Medium, High, Very High

	Tasks      []Task      `gorm:"foreignKey:RoadmapID" json:"tasks"`
	Milestones []Milestone `gorm:"foreignKey:RoadmapID" json:"milestones"`

	PriorityAreas          []engine.PriorityArea          `gorm:"serializer:json" json:"priorityAreas"`
	Risks                  []engine.RiskEntry             `gorm:"serializer:json" json:"riskAssessment"`
	ComplianceRequirements []engine.ComplianceRequirement `gorm:"serializer:json" json:"complianceRequirements"`
	Progress               engine.Progress                `gorm:"serializer:json" json:"progress"`

	Status    RoadmapStatus `gorm:"not null;default:'Draft'" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// GetUserID implements policy.Ownable.
func (r *Roadmap) GetUserID() uint { return r.UserID }

// Task is owned by exactly one roadmap. CompletedDate is set exactly when the
// status transitions to Completed (and refreshed if re-set).
type Task struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	RoadmapID       uint                `gorm:"not null;index" json:"-"`
	Title           string              `gorm:"not null" json:"title"`
	Description     string              `json:"description"`
	Category        engine.Category     `gorm:"not null;index" json:"category"`
	Priority        engine.TaskPriority `gorm:"not null" json:"priority"`
	EstimatedEffort string              `json:"estimatedEffort"`
	Cost            string              `json:"cost"`
	Status          engine.TaskStatus   `gorm:"not null;default:'Not Started'" json:"status"`
	StartDate       *time.Time          `json:"startDate,omitempty"`
	DueDate         *time.Time          `json:"dueDate,omitempty"`
	CompletedDate   *time.Time          `json:"completedDate,omitempty"`
	Assignee        string              `json:"assignee"`
	Notes           string              `json:"notes"`
	Attachments     []string            `gorm:"serializer:json" json:"attachments"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Milestone is owned by exactly one roadmap. TaskIDs reference task rows of the
// same roadmap by id (store-relative, never pointers). CompletionPercentage is
// manually maintained; it is not derived from the linked tasks.
type Milestone struct {
	ID                   uint                   `gorm:"primaryKey" json:"id"`
	RoadmapID            uint                   `gorm:"not null;index" json:"-"`
	Title                string                 `gorm:"not null" json:"title"`
	Description          string                 `json:"description"`
	TargetDate           time.Time              `json:"targetDate"`
	Status               engine.MilestoneStatus `gorm:"not null;default:'Pending'" json:"status"`
	TaskIDs              []uint                 `gorm:"serializer:json" json:"taskIds"`
	CompletionPercentage int                    `json:"completionPercentage"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}
