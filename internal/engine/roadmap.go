package engine

import (
	"fmt"
	"time"
)

// TaskStatus values. A roadmap's progress only counts Completed tasks.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "Not Started"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
	TaskOnHold     TaskStatus = "On Hold"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskOnHold:
		return true
	}
	return false
}

// TaskPriority values.
type TaskPriority string

const (
	PriorityCritical TaskPriority = "Critical"
	PriorityHigh     TaskPriority = "High"
	PriorityMedium   TaskPriority = "Medium"
	PriorityLow      TaskPriority = "Low"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// MilestoneStatus values.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "Pending"
	MilestoneInProgress MilestoneStatus = "In Progress"
	MilestoneCompleted  MilestoneStatus = "Completed"
	MilestoneDelayed    MilestoneStatus = "Delayed"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneDelayed:
		return true
	}
	return false
}

// ValidTimeline reports whether s is an accepted estimated timeline bucket.
func ValidTimeline(s string) bool {
	switch s {
	case "3-6 months", "6-12 months", "1-2 years", "2+ years":
		return true
	}
	return false
}

// ValidCost reports whether s is an accepted cost bucket.
func ValidCost(s string) bool {
	switch s {
	case "Low", "Medium", "High", "Very High":
		return true
	}
	return false
}

// PriorityArea is the per-category improvement target of a roadmap.
type PriorityArea struct {
	Category          Category `json:"category"`
	CurrentScore      int      `json:"currentScore"`
	TargetScore       int      `json:"targetScore"`
	ImprovementNeeded int      `json:"improvementNeeded"`
}

// RiskEntry is a canonical implementation risk attached to every roadmap.
type RiskEntry struct {
	Risk        string `json:"risk"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// ComplianceRequirement is a dated compliance checkpoint.
type ComplianceRequirement struct {
	Requirement string    `json:"requirement"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
}

// SkeletonTask is a generated task before persistence assigns it an id.
type SkeletonTask struct {
	Title           string
	Description     string
	Category        Category
	Priority        TaskPriority
	EstimatedEffort string
	Cost            string
	Status          TaskStatus
}

// SkeletonMilestone is a generated milestone before persistence.
type SkeletonMilestone struct {
	Title                string
	Description          string
	TargetDate           time.Time
	Status               MilestoneStatus
	CompletionPercentage int
}

// Skeleton is the auto-generated initial content of a roadmap.
type Skeleton struct {
	PriorityAreas          []PriorityArea
	Tasks                  []SkeletonTask
	Milestones             []SkeletonMilestone
	Risks                  []RiskEntry
	ComplianceRequirements []ComplianceRequirement
}

// ScoredInput is the slice of a scored questionnaire the generator consumes.
type ScoredInput struct {
	OverallScore         float64
	CategoryScores       map[Category]int
	MaturityLevel        MaturityLevel
	MajorNonConformities []NonConformity
}

// GenerateRoadmap turns a scored questionnaire into an initial roadmap skeleton.
// All date offsets are computed from now (injected, never time.Now), so
// re-running generation later shifts deadlines accordingly. Pure otherwise.
func GenerateRoadmap(in ScoredInput, targetLevel string, now time.Time) Skeleton {
	areas := make([]PriorityArea, 0, len(Categories))
	for _, c := range Categories {
		current := in.CategoryScores[c]
		target := current + 20
		if target > 100 {
			target = 100
		}
		areas = append(areas, PriorityArea{
			Category:          c,
			CurrentScore:      current,
			TargetScore:       target,
			ImprovementNeeded: target - current,
		})
	}

	var tasks []SkeletonTask
	for _, nc := range in.MajorNonConformities {
		tasks = append(tasks, SkeletonTask{
			Title:           "Resolve: " + nc.Question,
			Description:     nc.Impact,
			Category:        nc.Category,
			Priority:        PriorityCritical,
			EstimatedEffort: "1-2 weeks",
			Cost:            "Medium",
			Status:          TaskNotStarted,
		})
	}
	for _, c := range Categories {
		score := in.CategoryScores[c]
		if score >= 60 {
			continue
		}
		priority := PriorityMedium
		if score < 40 {
			priority = PriorityHigh
		}
		tasks = append(tasks, SkeletonTask{
			Title:           fmt.Sprintf("Améliorer la maturité du domaine %s", c),
			Description:     fmt.Sprintf("Le domaine %s atteint %d%% : renforcer les processus et la documentation associés.", c, score),
			Category:        c,
			Priority:        priority,
			EstimatedEffort: "2-4 weeks",
			Cost:            "Medium",
			Status:          TaskNotStarted,
		})
	}

	milestones := []SkeletonMilestone{
		{
			Title:                "Initial Assessment Complete",
			Description:          "Évaluation initiale de la maturité du SMSI réalisée.",
			TargetDate:           now.AddDate(0, 0, 30),
			Status:               MilestoneCompleted,
			CompletionPercentage: 100,
		},
		{
			Title:       "Critical Issues Resolved",
			Description: "Toutes les non-conformités majeures sont corrigées.",
			TargetDate:  now.AddDate(0, 0, 90),
			Status:      MilestonePending,
		},
		{
			Title:       "Target Maturity Level Achieved",
			Description: fmt.Sprintf("Atteindre le niveau de maturité %s.", targetLevel),
			TargetDate:  now.AddDate(0, 0, 365),
			Status:      MilestonePending,
		},
	}

	return Skeleton{
		PriorityAreas:          areas,
		Tasks:                  tasks,
		Milestones:             milestones,
		Risks:                  canonicalRisks(),
		ComplianceRequirements: complianceSchedule(now),
	}
}

// canonicalRisks returns the three fixed implementation risks. Static policy
// text, not derived from questionnaire data.
func canonicalRisks() []RiskEntry {
	return []RiskEntry{
		{
			Risk:        "Contraintes de ressources (budget et personnel)",
			Probability: "Moyenne",
			Impact:      "Élevé",
			Mitigation:  "Prioriser les actions critiques et étaler les investissements sur les jalons du plan.",
		},
		{
			Risk:        "Résistance au changement des équipes",
			Probability: "Moyenne",
			Impact:      "Moyen",
			Mitigation:  "Impliquer les équipes tôt, communiquer les objectifs et former aux nouvelles procédures.",
		},
		{
			Risk:        "Dépendances vis-à-vis de prestataires externes",
			Probability: "Faible",
			Impact:      "Élevé",
			Mitigation:  "Contractualiser les exigences de sécurité et prévoir des alternatives pour les services critiques.",
		},
	}
}

func complianceSchedule(now time.Time) []ComplianceRequirement {
	return []ComplianceRequirement{
		{
			Requirement: "Revue documentaire du SMSI (politiques et procédures ISO 27001)",
			Deadline:    now.AddDate(0, 0, 180),
			Status:      "Pending",
			Notes:       "Mettre à jour la déclaration d'applicabilité.",
		},
		{
			Requirement: "Audit interne de conformité",
			Deadline:    now.AddDate(0, 0, 270),
			Status:      "Pending",
			Notes:       "Couvrir l'ensemble des domaines PDCA.",
		},
		{
			Requirement: "Revue de direction et préparation à la certification",
			Deadline:    now.AddDate(0, 0, 365),
			Status:      "Pending",
			Notes:       "Consolider les preuves d'amélioration continue.",
		},
	}
}
