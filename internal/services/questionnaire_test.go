package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Question{}, &models.Questionnaire{}, &models.QuestionResponse{},
		&models.Roadmap{}, &models.Task{}, &models.Milestone{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Nom: "Test", Prenom: "User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return user
}

func sampleResponses() []engine.ResponseInput {
	return []engine.ResponseInput{
		{QuestionID: "plan-1", QuestionText: "Politique approuvée ?", Category: engine.CategoryPlan, Clause: "5.2", Weight: 10, Critical: true, Response: engine.ResponseNon},
		{QuestionID: "plan-2", QuestionText: "Périmètre documenté ?", Category: engine.CategoryPlan, Clause: "4.3", Weight: 10, Response: engine.ResponseOui},
		{QuestionID: "do-1", QuestionText: "Actifs inventoriés ?", Category: engine.CategoryDo, Clause: "A.5.9", Weight: 8, Response: engine.ResponsePartiellement},
		{QuestionID: "check-1", QuestionText: "Audits internes ?", Category: engine.CategoryCheck, Clause: "9.2", Weight: 6, Response: engine.ResponseOui},
	}
}

func TestQuestionnaireSubmitPersistsDerivedState(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "q@test")
	svc := NewQuestionnaireService(db)

	q, err := svc.Submit(user.ID, SubmitInput{Responses: sampleResponses(), CompletionTime: 420})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if q.ID == 0 {
		t.Fatal("missing questionnaire id")
	}
	if q.TotalQuestions != 4 || q.AnsweredQuestions != 4 {
		t.Errorf("counts = %d/%d, want 4/4", q.AnsweredQuestions, q.TotalQuestions)
	}
	if len(q.MajorNonConformities) != 1 {
		t.Errorf("non-conformities = %d, want 1", len(q.MajorNonConformities))
	}
	if q.Status != models.QuestionnaireCompleted {
		t.Errorf("status = %q, want completed", q.Status)
	}

	// Reload from storage: derived JSON columns and response rows must round-trip.
	got, err := svc.Get(user.ID, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OverallScore != q.OverallScore {
		t.Errorf("reloaded overall = %v, want %v", got.OverallScore, q.OverallScore)
	}
	if got.MaturityLevel != q.MaturityLevel {
		t.Errorf("reloaded level = %+v, want %+v", got.MaturityLevel, q.MaturityLevel)
	}
	if len(got.Responses) != 4 {
		t.Fatalf("reloaded responses = %d, want 4", len(got.Responses))
	}
	if got.Responses[0].QuestionID != "plan-1" || got.Responses[0].Score != 0 {
		t.Errorf("first response = %+v", got.Responses[0])
	}
	if got.Responses[1].Score != 10 {
		t.Errorf("second response score = %v, want 10", got.Responses[1].Score)
	}
}

func TestQuestionnaireSubmitRejectsBadInputWithoutWriting(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "bad@test")
	svc := NewQuestionnaireService(db)

	in := sampleResponses()
	in[2].Weight = 0
	if _, err := svc.Submit(user.ID, SubmitInput{Responses: in}); !errors.Is(err, engine.ErrInvalidWeight) {
		t.Fatalf("got %v, want ErrInvalidWeight", err)
	}
	var count int64
	db.Model(&models.Questionnaire{}).Count(&count)
	if count != 0 {
		t.Fatalf("questionnaire persisted despite validation failure")
	}
}

func TestQuestionnaireRescoreReplacesEverything(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "rescore@test")
	svc := NewQuestionnaireService(db)

	q, err := svc.Submit(user.ID, SubmitInput{Responses: sampleResponses()})
	if err != nil {
		t.Fatal(err)
	}
	oldScore := q.OverallScore

	updated := []engine.ResponseInput{
		{QuestionID: "plan-1", QuestionText: "Politique approuvée ?", Category: engine.CategoryPlan, Clause: "5.2", Weight: 10, Critical: true, Response: engine.ResponseOui},
		{QuestionID: "do-1", QuestionText: "Actifs inventoriés ?", Category: engine.CategoryDo, Clause: "A.5.9", Weight: 8, Response: engine.ResponseOui},
	}
	got, err := svc.Rescore(user.ID, q.ID, SubmitInput{Responses: updated})
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if got.OverallScore != 100 {
		t.Errorf("rescored overall = %v, want 100", got.OverallScore)
	}
	if got.OverallScore == oldScore {
		t.Error("rescore did not change the overall score")
	}
	if len(got.MajorNonConformities) != 0 {
		t.Errorf("non-conformities = %d, want 0 after rescore", len(got.MajorNonConformities))
	}
	var rows int64
	db.Model(&models.QuestionResponse{}).Where("questionnaire_id = ?", q.ID).Count(&rows)
	if rows != 2 {
		t.Errorf("stored response rows = %d, want 2 (old rows replaced)", rows)
	}
}

func TestQuestionnaireOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test")
	intruder := seedUser(t, db, "intruder@test")
	svc := NewQuestionnaireService(db)

	q, err := svc.Submit(owner.ID, SubmitInput{Responses: sampleResponses()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(intruder.ID, q.ID); !errors.Is(err, ErrOwnershipMismatch) {
		t.Errorf("get as intruder: got %v, want ErrOwnershipMismatch", err)
	}
	if err := svc.Delete(intruder.ID, q.ID); !errors.Is(err, ErrOwnershipMismatch) {
		t.Errorf("delete as intruder: got %v, want ErrOwnershipMismatch", err)
	}
	if _, err := svc.Get(owner.ID, 9999); !errors.Is(err, ErrQuestionnaireNotFound) {
		t.Errorf("unknown id: got %v, want ErrQuestionnaireNotFound", err)
	}
}

func TestQuestionnaireUpdateMeta(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "meta@test")
	svc := NewQuestionnaireService(db)

	q, err := svc.Submit(user.ID, SubmitInput{Responses: sampleResponses()})
	if err != nil {
		t.Fatal(err)
	}
	notes := "revue trimestrielle"
	tags := []string{"iso27001", "2026"}
	archived := models.QuestionnaireArchived
	got, err := svc.UpdateMeta(user.ID, q.ID, MetaInput{Notes: &notes, Tags: &tags, Status: &archived})
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}
	if got.Notes != notes || got.Status != models.QuestionnaireArchived || len(got.Tags) != 2 {
		t.Errorf("meta not applied: %+v", got)
	}
	// Derived state untouched by metadata edits.
	if got.OverallScore != q.OverallScore || got.TotalQuestions != q.TotalQuestions {
		t.Error("metadata update altered derived fields")
	}

	bad := models.QuestionnaireStatus("published")
	if _, err := svc.UpdateMeta(user.ID, q.ID, MetaInput{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status: got %v, want ErrInvalidStatus", err)
	}
}

func TestQuestionnaireDeleteCascadesResponses(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "del@test")
	svc := NewQuestionnaireService(db)

	q, err := svc.Submit(user.ID, SubmitInput{Responses: sampleResponses()})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(user.ID, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var rows int64
	db.Model(&models.QuestionResponse{}).Where("questionnaire_id = ?", q.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("orphan response rows = %d, want 0", rows)
	}
	if _, err := svc.Get(user.ID, q.ID); !errors.Is(err, ErrQuestionnaireNotFound) {
		t.Errorf("get after delete: got %v, want ErrQuestionnaireNotFound", err)
	}
}

func TestQuestionnaireStats(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "stats@test")
	svc := NewQuestionnaireService(db)

	empty, err := svc.Stats(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Count != 0 {
		t.Fatalf("empty stats count = %d", empty.Count)
	}

	if _, err := svc.Submit(user.ID, SubmitInput{Responses: sampleResponses()}); err != nil {
		t.Fatal(err)
	}
	perfect := []engine.ResponseInput{
		{QuestionID: "plan-1", Category: engine.CategoryPlan, Weight: 10, Response: engine.ResponseOui},
	}
	if _, err := svc.Submit(user.ID, SubmitInput{Responses: perfect}); err != nil {
		t.Fatal(err)
	}

	st, err := svc.Stats(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Count != 2 {
		t.Errorf("count = %d, want 2", st.Count)
	}
	if st.LatestScore != 100 || st.LatestLevel.Level != engine.LevelExcellence {
		t.Errorf("latest = %v/%+v, want 100/Excellence", st.LatestScore, st.LatestLevel)
	}
	if st.AverageScore <= 0 || st.AverageScore > 100 {
		t.Errorf("average out of range: %v", st.AverageScore)
	}
}
