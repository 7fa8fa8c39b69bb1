package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/auth"
	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/services"
	"github.com/A7medBenRomdhanO/backend/internal/validation"
)

type RoadmapHandler struct {
	DB  *gorm.DB
	Svc *services.RoadmapService
}

func NewRoadmapHandler(db *gorm.DB, svc *services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{DB: db, Svc: svc}
}

type generateReq struct {
	QuestionnaireID     uint   `json:"questionnaireId"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	TargetMaturityLevel string `json:"targetMaturityLevel"`
	EstimatedTimeline   string `json:"estimatedTimeline"`
	TotalEstimatedCost  string `json:"totalEstimatedCost"`
}

// Generate: POST /roadmaps/generate
func (h *RoadmapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", req.Title, v)
	if req.QuestionnaireID == 0 {
		v["questionnaireId"] = "required"
	}
	if !engine.ValidTargetLevel(req.TargetMaturityLevel) {
		v["targetMaturityLevel"] = "invalid_value"
	}
	if !engine.ValidTimeline(req.EstimatedTimeline) {
		v["estimatedTimeline"] = "invalid_value"
	}
	if !engine.ValidCost(req.TotalEstimatedCost) {
		v["totalEstimatedCost"] = "invalid_value"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	rm, err := h.Svc.Generate(uid, services.GenerateInput{
		QuestionnaireID:     req.QuestionnaireID,
		Title:               req.Title,
		Description:         req.Description,
		TargetMaturityLevel: req.TargetMaturityLevel,
		EstimatedTimeline:   req.EstimatedTimeline,
		TotalEstimatedCost:  req.TotalEstimatedCost,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rm)
}

// List: GET /roadmaps
func (h *RoadmapHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit, offset := pageParams(r)
	rms, total, err := h.Svc.List(uid, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_roadmaps", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rms, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /roadmaps/get?id=...
func (h *RoadmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rm, err := h.Svc.Get(uid, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rm)
}

// Delete: DELETE /roadmaps/delete?id=...
func (h *RoadmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(uid, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateStatus: PUT /roadmaps/status?id=...
func (h *RoadmapHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rm, err := h.Svc.UpdateStatus(uid, id, models.RoadmapStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rm)
}

type taskReq struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	EstimatedEffort string     `json:"estimatedEffort"`
	Cost            string     `json:"cost"`
	Status          string     `json:"status"`
	StartDate       *time.Time `json:"startDate"`
	DueDate         *time.Time `json:"dueDate"`
	Assignee        string     `json:"assignee"`
	Notes           string     `json:"notes"`
	Attachments     []string   `json:"attachments"`
}

// AddTask: POST /roadmaps/tasks?id=...
func (h *RoadmapHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", req.Title, v)
	if !engine.Category(req.Category).IsValid() {
		v["category"] = "invalid_value"
	}
	if !engine.TaskPriority(req.Priority).IsValid() {
		v["priority"] = "invalid_value"
	}
	if req.Status != "" && !engine.TaskStatus(req.Status).IsValid() {
		v["status"] = "invalid_value"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	task, err := h.Svc.AddTask(uid, id, services.TaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        engine.Category(req.Category),
		Priority:        engine.TaskPriority(req.Priority),
		EstimatedEffort: req.EstimatedEffort,
		Cost:            req.Cost,
		Status:          engine.TaskStatus(req.Status),
		StartDate:       req.StartDate,
		DueDate:         req.DueDate,
		Assignee:        req.Assignee,
		Notes:           req.Notes,
		Attachments:     req.Attachments,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

// UpdateTaskStatus: PUT /roadmaps/tasks/status?id=...&taskId=...
func (h *RoadmapHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	taskID := idParam(r, "taskId")
	if id == 0 || taskID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rm, err := h.Svc.UpdateTaskStatus(uid, id, taskID, engine.TaskStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rm)
}

type milestoneReq struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	TargetDate           time.Time `json:"targetDate"`
	Status               string    `json:"status"`
	TaskIDs              []uint    `json:"taskIds"`
	CompletionPercentage int       `json:"completionPercentage"`
}

// AddMilestone: POST /roadmaps/milestones?id=...
func (h *RoadmapHandler) AddMilestone(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req milestoneReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", req.Title, v)
	if req.TargetDate.IsZero() {
		v["targetDate"] = "required"
	}
	if req.Status != "" && !engine.MilestoneStatus(req.Status).IsValid() {
		v["status"] = "invalid_value"
	}
	validation.RangeFloat("completionPercentage", float64(req.CompletionPercentage), 0, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	ms, err := h.Svc.AddMilestone(uid, id, services.MilestoneInput{
		Title:                req.Title,
		Description:          req.Description,
		TargetDate:           req.TargetDate,
		Status:               engine.MilestoneStatus(req.Status),
		TaskIDs:              req.TaskIDs,
		CompletionPercentage: req.CompletionPercentage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ms)
}
