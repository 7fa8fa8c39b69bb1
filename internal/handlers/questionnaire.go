package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/auth"
	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/services"
	"github.com/A7medBenRomdhanO/backend/internal/validation"
)

type QuestionnaireHandler struct {
	DB  *gorm.DB
	Svc *services.QuestionnaireService
}

func NewQuestionnaireHandler(db *gorm.DB, svc *services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{DB: db, Svc: svc}
}

type responseReq struct {
	QuestionID   string  `json:"questionId"`
	QuestionText string  `json:"questionText"`
	Category     string  `json:"category"`
	Clause       string  `json:"clause"`
	Weight       float64 `json:"weight"`
	Critical     bool    `json:"critical"`
	Response     string  `json:"response"`
}

type submitReq struct {
	Responses      []responseReq `json:"responses"`
	CompletionTime int           `json:"completionTime"`
	Status         string        `json:"status"`
	Notes          *string       `json:"notes"`
	Tags           *[]string     `json:"tags"`
}

// validateResponses shapes the raw payload into engine inputs, collecting
// field-level violations the same way the rest of the API does.
func validateResponses(reqs []responseReq, v validation.Violations) []engine.ResponseInput {
	if len(reqs) == 0 {
		v["responses"] = "required"
		return nil
	}
	inputs := make([]engine.ResponseInput, 0, len(reqs))
	for i, r := range reqs {
		field := "responses[" + strconv.Itoa(i) + "]"
		validation.Required(field+".questionId", r.QuestionID, v)
		validation.PositiveFloat(field+".weight", r.Weight, v)
		if !engine.Category(r.Category).IsValid() {
			v[field+".category"] = "invalid_value"
		}
		if r.Response != "" && !engine.ResponseValue(r.Response).IsValid() {
			v[field+".response"] = "invalid_value"
		}
		inputs = append(inputs, engine.ResponseInput{
			QuestionID:   r.QuestionID,
			QuestionText: r.QuestionText,
			Category:     engine.Category(r.Category),
			Clause:       r.Clause,
			Weight:       r.Weight,
			Critical:     r.Critical,
			Response:     engine.ResponseValue(r.Response),
		})
	}
	return inputs
}

// Submit: POST /questionnaires
func (h *QuestionnaireHandler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	inputs := validateResponses(req.Responses, v)
	status := models.QuestionnaireStatus(req.Status)
	if req.Status != "" && !status.IsValid() {
		v["status"] = "invalid_value"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	q, err := h.Svc.Submit(uid, services.SubmitInput{
		Responses:      inputs,
		CompletionTime: req.CompletionTime,
		Status:         status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// List: GET /questionnaires
func (h *QuestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit, offset := pageParams(r)
	qs, total, err := h.Svc.List(uid, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_questionnaires", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": qs, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /questionnaires/get?id=...
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	q, err := h.Svc.Get(uid, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Update: PUT /questionnaires/update?id=...
// Re-supplying responses triggers a full rescore; a body with only metadata
// (notes/tags/status) never does.
func (h *QuestionnaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := idParam(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if len(req.Responses) > 0 {
		v := validation.Violations{}
		inputs := validateResponses(req.Responses, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		q, err := h.Svc.Rescore(uid, id, services.SubmitInput{
			Responses:      inputs,
			CompletionTime: req.CompletionTime,
			Status:         models.QuestionnaireStatus(req.Status),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, q)
		return
	}

	meta := services.MetaInput{Notes: req.Notes, Tags: req.Tags}
	if req.Status != "" {
		status := models.QuestionnaireStatus(req.Status)
		meta.Status = &status
	}
	q, err := h.Svc.UpdateMeta(uid, id, meta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Delete: DELETE /questionnaires/delete?id=...
func (h *QuestionnaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Stats: GET /questionnaires/stats
func (h *QuestionnaireHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	st, err := h.Svc.Stats(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_compute_stats", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// Questions: GET /questionnaires/questions — the seeded catalog, in order.
func (h *QuestionnaireHandler) Questions(w http.ResponseWriter, r *http.Request) {
	var questions []models.Question
	if err := h.DB.Order("position asc").Find(&questions).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_questions", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": questions, "total": len(questions)})
}
