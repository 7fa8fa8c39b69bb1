package handlers

import (
	"net/http"
	"strconv"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
)

// Classify: GET /maturity/classify?score=... — the UI-facing classification,
// backed by the same table the scoring path uses.
func Classify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("score")
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || score < 0 || score > 100 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_score", map[string]string{"score": "must be a number between 0 and 100"})
		return
	}
	httpx.JSON(w, http.StatusOK, engine.Classify(score))
}
