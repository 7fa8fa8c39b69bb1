package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/auth"
	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/services"
)

func newRoadmapTestHandler(t *testing.T, db *gorm.DB) *RoadmapHandler {
	t.Helper()
	svc := services.NewRoadmapService(db)
	svc.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return NewRoadmapHandler(db, svc)
}

// seedScoredSubmission crée un questionnaire noté via le service, comme le
// ferait un vrai POST /questionnaires.
func seedScoredSubmission(t *testing.T, db *gorm.DB, userID uint) models.Questionnaire {
	t.Helper()
	qsvc := services.NewQuestionnaireService(db)
	q, err := qsvc.Submit(userID, services.SubmitInput{
		Responses: []engine.ResponseInput{
			{QuestionID: "plan-1", QuestionText: "Politique approuvée ?", Category: engine.CategoryPlan, Clause: "5.2", Weight: 10, Critical: true, Response: engine.ResponseNon},
			{QuestionID: "do-1", QuestionText: "Contrôles déployés ?", Category: engine.CategoryDo, Clause: "8.1", Weight: 8, Response: engine.ResponseOui},
		},
	})
	if err != nil {
		t.Fatalf("seed questionnaire: %v", err)
	}
	return *q
}

func generateRoadmapBody(questionnaireID uint) string {
	return `{"questionnaireId":` + strconv.Itoa(int(questionnaireID)) + `,
		"title":"Plan de remédiation",
		"targetMaturityLevel":"Intermédiaire",
		"estimatedTimeline":"6-12 months",
		"totalEstimatedCost":"Medium"}`
}

func TestRoadmapGenerateJSON(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmgen@test")
	q := seedScoredSubmission(t, db, user.ID)
	h := newRoadmapTestHandler(t, db)

	req := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(generateRoadmapBody(q.ID)))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Generate(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var rm map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rm["title"] != "Plan de remédiation" || rm["targetMaturityLevel"] != "Intermédiaire" {
		t.Errorf("unexpected roadmap header: %v", rm)
	}
	if len(rm["milestones"].([]any)) != 3 {
		t.Errorf("milestones = %v", rm["milestones"])
	}
	tasks := rm["tasks"].([]any)
	if len(tasks) == 0 {
		t.Fatal("expected generated tasks")
	}
	progress := rm["progress"].(map[string]any)
	if progress["overall"].(float64) != 0 {
		t.Errorf("initial overall progress = %v, want 0", progress["overall"])
	}
}

func TestRoadmapGenerateValidation(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmval@test")
	h := newRoadmapTestHandler(t, db)

	body := `{"title":"","targetMaturityLevel":"Critique","estimatedTimeline":"jamais","totalEstimatedCost":"Gratuit"}`
	req := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Generate(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	for _, field := range []string{"title", "questionnaireId", "targetMaturityLevel", "estimatedTimeline", "totalEstimatedCost"} {
		if resp.Details[field] == "" {
			t.Errorf("missing violation for %s: %v", field, resp.Details)
		}
	}
}

func TestRoadmapGenerateForeignQuestionnaire(t *testing.T) {
	db := setupHandlerTestDB(t)
	owner := seedHandlerUser(t, db, "rmowner@test")
	intruder := seedHandlerUser(t, db, "rmintruder@test")
	q := seedScoredSubmission(t, db, owner.ID)
	h := newRoadmapTestHandler(t, db)

	req := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(generateRoadmapBody(q.ID)))
	req = req.WithContext(auth.WithUserID(req.Context(), intruder.ID))
	w := httptest.NewRecorder()
	h.Generate(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRoadmapTaskLifecycleOverHTTP(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmtask@test")
	q := seedScoredSubmission(t, db, user.ID)
	h := newRoadmapTestHandler(t, db)

	genReq := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(generateRoadmapBody(q.ID)))
	genReq = genReq.WithContext(auth.WithUserID(genReq.Context(), user.ID))
	genW := httptest.NewRecorder()
	h.Generate(genW, genReq)
	var rm map[string]any
	_ = json.Unmarshal(genW.Body.Bytes(), &rm)
	roadmapID := strconv.Itoa(int(rm["id"].(float64)))

	taskBody := `{"title":"Revue des accès","category":"Check","priority":"Medium","estimatedEffort":"1-2 weeks","cost":"Low"}`
	addReq := httptest.NewRequest(http.MethodPost, "/roadmaps/tasks?id="+roadmapID, strings.NewReader(taskBody))
	addReq = addReq.WithContext(auth.WithUserID(addReq.Context(), user.ID))
	addW := httptest.NewRecorder()
	h.AddTask(addW, addReq)
	if addW.Code != http.StatusCreated {
		t.Fatalf("add task expected 201 got %d body=%s", addW.Code, addW.Body.String())
	}
	var task map[string]any
	_ = json.Unmarshal(addW.Body.Bytes(), &task)
	if task["status"] != string(engine.TaskNotStarted) {
		t.Errorf("default status = %v", task["status"])
	}
	taskID := strconv.Itoa(int(task["id"].(float64)))

	stReq := httptest.NewRequest(http.MethodPut, "/roadmaps/tasks/status?id="+roadmapID+"&taskId="+taskID,
		strings.NewReader(`{"status":"Completed"}`))
	stReq = stReq.WithContext(auth.WithUserID(stReq.Context(), user.ID))
	stW := httptest.NewRecorder()
	h.UpdateTaskStatus(stW, stReq)
	if stW.Code != http.StatusOK {
		t.Fatalf("update status expected 200 got %d body=%s", stW.Code, stW.Body.String())
	}
	var updated map[string]any
	_ = json.Unmarshal(stW.Body.Bytes(), &updated)
	progress := updated["progress"].(map[string]any)
	if progress["overall"].(float64) <= 0 {
		t.Errorf("progress not recomputed: %v", progress)
	}
	// Check already carries one generated improvement task (category scored 0),
	// so completing the added task brings the category to half.
	byCategory := progress["byCategory"].(map[string]any)
	if byCategory["Check"].(float64) != 50 {
		t.Errorf("Check progress = %v, want 50", byCategory["Check"])
	}
}

func TestRoadmapUpdateTaskStatusRequiresBothIDs(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmids@test")
	h := newRoadmapTestHandler(t, db)

	req := httptest.NewRequest(http.MethodPut, "/roadmaps/tasks/status?id=1", strings.NewReader(`{"status":"Completed"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.UpdateTaskStatus(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestRoadmapAddMilestoneOverHTTP(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmms@test")
	q := seedScoredSubmission(t, db, user.ID)
	h := newRoadmapTestHandler(t, db)

	genReq := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(generateRoadmapBody(q.ID)))
	genReq = genReq.WithContext(auth.WithUserID(genReq.Context(), user.ID))
	genW := httptest.NewRecorder()
	h.Generate(genW, genReq)
	var rm map[string]any
	_ = json.Unmarshal(genW.Body.Bytes(), &rm)
	roadmapID := strconv.Itoa(int(rm["id"].(float64)))

	body := `{"title":"Audit interne","targetDate":"2026-09-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/roadmaps/milestones?id="+roadmapID, strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.AddMilestone(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var ms map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &ms)
	if ms["status"] != string(engine.MilestonePending) {
		t.Errorf("default milestone status = %v", ms["status"])
	}

	missingDate := httptest.NewRequest(http.MethodPost, "/roadmaps/milestones?id="+roadmapID,
		strings.NewReader(`{"title":"Sans date"}`))
	missingDate = missingDate.WithContext(auth.WithUserID(missingDate.Context(), user.ID))
	mdW := httptest.NewRecorder()
	h.AddMilestone(mdW, missingDate)
	if mdW.Code != http.StatusBadRequest {
		t.Errorf("missing targetDate: expected 400 got %d", mdW.Code)
	}
}

func TestRoadmapStatusUpdateOverHTTP(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedHandlerUser(t, db, "rmstatus@test")
	q := seedScoredSubmission(t, db, user.ID)
	h := newRoadmapTestHandler(t, db)

	genReq := httptest.NewRequest(http.MethodPost, "/roadmaps/generate", strings.NewReader(generateRoadmapBody(q.ID)))
	genReq = genReq.WithContext(auth.WithUserID(genReq.Context(), user.ID))
	genW := httptest.NewRecorder()
	h.Generate(genW, genReq)
	var rm map[string]any
	_ = json.Unmarshal(genW.Body.Bytes(), &rm)
	roadmapID := strconv.Itoa(int(rm["id"].(float64)))

	req := httptest.NewRequest(http.MethodPut, "/roadmaps/status?id="+roadmapID, strings.NewReader(`{"status":"Active"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated["status"] != "Active" {
		t.Errorf("status = %v", updated["status"])
	}

	bad := httptest.NewRequest(http.MethodPut, "/roadmaps/status?id="+roadmapID, strings.NewReader(`{"status":"Paused"}`))
	bad = bad.WithContext(auth.WithUserID(bad.Context(), user.ID))
	badW := httptest.NewRecorder()
	h.UpdateStatus(badW, bad)
	if badW.Code != http.StatusBadRequest {
		t.Errorf("invalid status: expected 400 got %d", badW.Code)
	}
}
