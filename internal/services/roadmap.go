package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/policy"
)

// RoadmapService generates roadmaps from scored questionnaires and exposes the
// task/milestone mutations. Progress is recomputed on every task change and the
// stored value overwritten; clients can never supply it. Mutations are guarded
// by the roadmap Version column: a stale write surfaces ErrConcurrentModification
// instead of silently overwriting.
type RoadmapService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewRoadmapService(db *gorm.DB) *RoadmapService {
	return &RoadmapService{DB: db, Now: time.Now}
}

// GenerateInput are the caller-supplied parameters of a new roadmap. Enum
// fields are validated at the transport boundary; the service re-checks the
// ones its invariants depend on.
type GenerateInput struct {
	QuestionnaireID     uint
	Title               string
	Description         string
	TargetMaturityLevel string
	EstimatedTimeline   string
	TotalEstimatedCost  string
}

// Generate builds the initial roadmap skeleton from the questionnaire's scored
// state and persists it with tasks and milestones in one transaction. The
// questionnaire must belong to userID. A questionnaire may seed any number of
// roadmaps.
func (s *RoadmapService) Generate(userID uint, in GenerateInput) (*models.Roadmap, error) {
	var q models.Questionnaire
	if err := s.DB.First(&q, in.QuestionnaireID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, err
	}
	if !policy.Owns(userID, &q) {
		return nil, ErrOwnershipMismatch
	}

	now := s.Now()
	skeleton := engine.GenerateRoadmap(engine.ScoredInput{
		OverallScore:         q.OverallScore,
		CategoryScores:       q.CategoryScores,
		MaturityLevel:        q.MaturityLevel,
		MajorNonConformities: q.MajorNonConformities,
	}, in.TargetMaturityLevel, now)

	rm := &models.Roadmap{
		UserID:                 userID,
		QuestionnaireID:        q.ID,
		Version:                1,
		Title:                  in.Title,
		Description:            in.Description,
		CurrentMaturityLevel:   q.MaturityLevel.Level,
		TargetMaturityLevel:    in.TargetMaturityLevel,
		EstimatedTimeline:      in.EstimatedTimeline,
		TotalEstimatedCost:     in.TotalEstimatedCost,
		PriorityAreas:          skeleton.PriorityAreas,
		Risks:                  skeleton.Risks,
		ComplianceRequirements: skeleton.ComplianceRequirements,
		Status:                 models.RoadmapDraft,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rm).Error; err != nil {
			return err
		}
		tasks := make([]models.Task, 0, len(skeleton.Tasks))
		for _, t := range skeleton.Tasks {
			tasks = append(tasks, models.Task{
				RoadmapID:       rm.ID,
				Title:           t.Title,
				Description:     t.Description,
				Category:        t.Category,
				Priority:        t.Priority,
				EstimatedEffort: t.EstimatedEffort,
				Cost:            t.Cost,
				Status:          t.Status,
			})
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		rm.Tasks = tasks
		milestones := make([]models.Milestone, 0, len(skeleton.Milestones))
		for _, m := range skeleton.Milestones {
			milestones = append(milestones, models.Milestone{
				RoadmapID:            rm.ID,
				Title:                m.Title,
				Description:          m.Description,
				TargetDate:           m.TargetDate,
				Status:               m.Status,
				CompletionPercentage: m.CompletionPercentage,
			})
		}
		if len(milestones) > 0 {
			if err := tx.Create(&milestones).Error; err != nil {
				return err
			}
		}
		rm.Milestones = milestones
		rm.Progress = engine.RecomputeProgress(taskStates(tasks))
		return tx.Model(rm).Select("Progress").Updates(rm).Error
	})
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Get loads a roadmap with its tasks and milestones, enforcing ownership.
func (s *RoadmapService) Get(userID, id uint) (*models.Roadmap, error) {
	var rm models.Roadmap
	if err := s.DB.Preload("Tasks").Preload("Milestones").First(&rm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, err
	}
	if !policy.Owns(userID, &rm) {
		return nil, ErrOwnershipMismatch
	}
	return &rm, nil
}

// List returns the owner's roadmaps, newest first, without child rows.
func (s *RoadmapService) List(userID uint, limit, offset int) ([]models.Roadmap, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Roadmap{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rms []models.Roadmap
	if err := s.DB.Where("user_id = ?", userID).Order("id desc").
		Limit(limit).Offset(offset).Find(&rms).Error; err != nil {
		return nil, 0, err
	}
	return rms, total, nil
}

// TaskInput is a validated new-task payload. Titles need not be unique.
type TaskInput struct {
	Title           string
	Description     string
	Category        engine.Category
	Priority        engine.TaskPriority
	EstimatedEffort string
	Cost            string
	Status          engine.TaskStatus
	StartDate       *time.Time
	DueDate         *time.Time
	Assignee        string
	Notes           string
	Attachments     []string
}

// AddTask appends a task and overwrites the roadmap's progress from the new
// task list, all in one transaction.
func (s *RoadmapService) AddTask(userID, roadmapID uint, in TaskInput) (*models.Task, error) {
	rm, err := s.Get(userID, roadmapID)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = engine.TaskNotStarted
	}
	if !status.IsValid() || !in.Category.IsValid() || !in.Priority.IsValid() {
		return nil, ErrInvalidStatus
	}
	task := &models.Task{
		RoadmapID:       rm.ID,
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Priority:        in.Priority,
		EstimatedEffort: in.EstimatedEffort,
		Cost:            in.Cost,
		Status:          status,
		StartDate:       in.StartDate,
		DueDate:         in.DueDate,
		Assignee:        in.Assignee,
		Notes:           in.Notes,
		Attachments:     in.Attachments,
	}
	if status == engine.TaskCompleted {
		now := s.Now()
		task.CompletedDate = &now
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		progress := engine.RecomputeProgress(taskStates(append(rm.Tasks, *task)))
		return s.saveProgress(tx, rm, progress)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskStatus changes a task's status. Completed sets CompletedDate to the
// injected clock's now (idempotently refreshed on repeat); leaving Completed
// clears it. Progress is recomputed from the updated task list.
func (s *RoadmapService) UpdateTaskStatus(userID, roadmapID, taskID uint, newStatus engine.TaskStatus) (*models.Roadmap, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}
	rm, err := s.Get(userID, roadmapID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range rm.Tasks {
		if rm.Tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTaskNotFound
	}
	task := &rm.Tasks[idx]
	task.Status = newStatus
	if newStatus == engine.TaskCompleted {
		now := s.Now()
		task.CompletedDate = &now
	} else {
		task.CompletedDate = nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).
			Select("status", "completed_date").
			Updates(map[string]any{"status": task.Status, "completed_date": task.CompletedDate}).Error; err != nil {
			return err
		}
		progress := engine.RecomputeProgress(taskStates(rm.Tasks))
		return s.saveProgress(tx, rm, progress)
	})
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// MilestoneInput is a validated new-milestone payload.
type MilestoneInput struct {
	Title                string
	Description          string
	TargetDate           time.Time
	Status               engine.MilestoneStatus
	TaskIDs              []uint
	CompletionPercentage int
}

// AddMilestone appends a milestone. Milestones do not enter the progress
// computation, so no recompute happens; the version still advances so
// concurrent mutators are detected.
func (s *RoadmapService) AddMilestone(userID, roadmapID uint, in MilestoneInput) (*models.Milestone, error) {
	rm, err := s.Get(userID, roadmapID)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = engine.MilestonePending
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	// Linked tasks must resolve within this roadmap.
	known := make(map[uint]bool, len(rm.Tasks))
	for _, t := range rm.Tasks {
		known[t.ID] = true
	}
	for _, id := range in.TaskIDs {
		if !known[id] {
			return nil, ErrTaskNotFound
		}
	}
	ms := &models.Milestone{
		RoadmapID:            rm.ID,
		Title:                in.Title,
		Description:          in.Description,
		TargetDate:           in.TargetDate,
		Status:               status,
		TaskIDs:              in.TaskIDs,
		CompletionPercentage: in.CompletionPercentage,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ms).Error; err != nil {
			return err
		}
		return s.bumpVersion(tx, rm)
	})
	if err != nil {
		return nil, err
	}
	return ms, nil
}

// UpdateStatus changes the roadmap lifecycle status.
func (s *RoadmapService) UpdateStatus(userID, roadmapID uint, status models.RoadmapStatus) (*models.Roadmap, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	rm, err := s.Get(userID, roadmapID)
	if err != nil {
		return nil, err
	}
	rm.Status = status
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Roadmap{}).
			Where("id = ? AND version = ?", rm.ID, rm.Version).
			Updates(map[string]any{"status": status, "version": rm.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}
		rm.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Delete removes the roadmap and cascades ownership of its tasks and milestones.
func (s *RoadmapService) Delete(userID, id uint) error {
	rm, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("roadmap_id = ?", rm.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", rm.ID).Delete(&models.Milestone{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Roadmap{}, rm.ID).Error
	})
}

// saveProgress writes the derived progress guarded by the version read at load
// time. Zero rows affected means another writer got there first.
func (s *RoadmapService) saveProgress(tx *gorm.DB, rm *models.Roadmap, progress engine.Progress) error {
	rm.Progress = progress
	res := tx.Model(&models.Roadmap{ID: rm.ID}).
		Where("version = ?", rm.Version).
		Select("Progress", "Version").
		Updates(models.Roadmap{Progress: progress, Version: rm.Version + 1})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	rm.Version++
	return nil
}

func (s *RoadmapService) bumpVersion(tx *gorm.DB, rm *models.Roadmap) error {
	res := tx.Model(&models.Roadmap{}).
		Where("id = ? AND version = ?", rm.ID, rm.Version).
		Update("version", rm.Version+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	rm.Version++
	return nil
}

func taskStates(tasks []models.Task) []engine.TaskState {
	states := make([]engine.TaskState, 0, len(tasks))
	for _, t := range tasks {
		states = append(states, engine.TaskState{Category: t.Category, Status: t.Status})
	}
	return states
}
