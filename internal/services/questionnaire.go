package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/policy"
)

// QuestionnaireService scores submissions and keeps the derived columns of a
// questionnaire consistent with its response rows. Scoring itself lives in the
// engine package; this service only adds ownership checks and atomic persistence.
type QuestionnaireService struct {
	DB *gorm.DB
}

func NewQuestionnaireService(db *gorm.DB) *QuestionnaireService {
	return &QuestionnaireService{DB: db}
}

// SubmitInput is a full response set plus submission metadata.
type SubmitInput struct {
	Responses      []engine.ResponseInput
	CompletionTime int
	Status         models.QuestionnaireStatus
}

// Submit scores the responses and persists the questionnaire with all derived
// fields in one transaction. Nothing is written when scoring fails.
func (s *QuestionnaireService) Submit(userID uint, in SubmitInput) (*models.Questionnaire, error) {
	result, err := engine.Score(in.Responses)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.QuestionnaireCompleted
	}
	q := &models.Questionnaire{
		UserID:         userID,
		CompletionTime: in.CompletionTime,
		Status:         status,
	}
	applyScoreResult(q, result)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		rows := buildResponseRows(q.ID, result.Responses)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			q.Responses = rows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Rescore replaces the response set of an existing questionnaire and recomputes
// every derived field atomically. Derived state and responses always move together.
func (s *QuestionnaireService) Rescore(userID, id uint, in SubmitInput) (*models.Questionnaire, error) {
	q, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	result, err := engine.Score(in.Responses)
	if err != nil {
		return nil, err
	}
	applyScoreResult(q, result)
	if in.CompletionTime > 0 {
		q.CompletionTime = in.CompletionTime
	}
	if in.Status != "" {
		q.Status = in.Status
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("questionnaire_id = ?", q.ID).Delete(&models.QuestionResponse{}).Error; err != nil {
			return err
		}
		rows := buildResponseRows(q.ID, result.Responses)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		q.Responses = rows
		return tx.Model(q).Select(
			"OverallScore", "CategoryScores", "MaturityLevel", "MajorNonConformities",
			"TotalQuestions", "AnsweredQuestions", "CompletionTime", "Status",
		).Updates(q).Error
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// MetaInput carries secondary metadata updates; nil fields are left unchanged.
// Touching metadata never triggers a rescore.
type MetaInput struct {
	Notes  *string
	Tags   *[]string
	Status *models.QuestionnaireStatus
}

func (s *QuestionnaireService) UpdateMeta(userID, id uint, in MetaInput) (*models.Questionnaire, error) {
	q, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if in.Notes != nil {
		q.Notes = *in.Notes
	}
	if in.Tags != nil {
		q.Tags = *in.Tags
	}
	if in.Status != nil {
		q.Status = *in.Status
	}
	if err := s.DB.Model(q).Select("Notes", "Tags", "Status").Updates(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// Get loads a questionnaire with its responses and enforces ownership.
func (s *QuestionnaireService) Get(userID, id uint) (*models.Questionnaire, error) {
	var q models.Questionnaire
	if err := s.DB.Preload("Responses", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, err
	}
	if !policy.Owns(userID, &q) {
		return nil, ErrOwnershipMismatch
	}
	return &q, nil
}

// List returns the owner's questionnaires, newest first.
func (s *QuestionnaireService) List(userID uint, limit, offset int) ([]models.Questionnaire, int64, error) {
	var total int64
	dbq := s.DB.Model(&models.Questionnaire{}).Where("user_id = ?", userID)
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var qs []models.Questionnaire
	if err := s.DB.Where("user_id = ?", userID).Order("id desc").
		Limit(limit).Offset(offset).Find(&qs).Error; err != nil {
		return nil, 0, err
	}
	return qs, total, nil
}

// Delete removes the questionnaire and its response rows in one transaction.
// Roadmaps seeded from it survive: they are independent records once generated.
func (s *QuestionnaireService) Delete(userID, id uint) error {
	q, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("questionnaire_id = ?", q.ID).Delete(&models.QuestionResponse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Questionnaire{}, q.ID).Error
	})
}

// Stats is a small owner-scoped rollup computed in Go.
type Stats struct {
	Count        int64                `json:"count"`
	AverageScore float64              `json:"averageScore"`
	LatestScore  float64              `json:"latestScore"`
	LatestLevel  engine.MaturityLevel `json:"latestLevel"`
}

func (s *QuestionnaireService) Stats(userID uint) (*Stats, error) {
	var qs []models.Questionnaire
	if err := s.DB.Select("id", "overall_score", "maturity_level").
		Where("user_id = ?", userID).Order("id asc").Find(&qs).Error; err != nil {
		return nil, err
	}
	st := &Stats{Count: int64(len(qs))}
	if len(qs) == 0 {
		return st, nil
	}
	var sum float64
	for _, q := range qs {
		sum += q.OverallScore
	}
	st.AverageScore = sum / float64(len(qs))
	last := qs[len(qs)-1]
	st.LatestScore = last.OverallScore
	st.LatestLevel = last.MaturityLevel
	return st, nil
}

func applyScoreResult(q *models.Questionnaire, r *engine.ScoreResult) {
	q.OverallScore = r.OverallScore
	q.CategoryScores = r.CategoryScores
	q.MaturityLevel = r.MaturityLevel
	q.MajorNonConformities = r.MajorNonConformities
	q.TotalQuestions = r.TotalQuestions
	q.AnsweredQuestions = r.AnsweredQuestions
}

func buildResponseRows(questionnaireID uint, scored []engine.ScoredResponse) []models.QuestionResponse {
	rows := make([]models.QuestionResponse, 0, len(scored))
	for i, r := range scored {
		rows = append(rows, models.QuestionResponse{
			QuestionnaireID: questionnaireID,
			QuestionID:      r.QuestionID,
			QuestionText:    r.QuestionText,
			Category:        r.Category,
			Clause:          r.Clause,
			Weight:          r.Weight,
			Critical:        r.Critical,
			Response:        r.Response,
			Score:           r.Score,
			Position:        i + 1,
		})
	}
	return rows
}
