package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/auth"
	"github.com/A7medBenRomdhanO/backend/internal/handlers"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// Maturity classification is read-only and shares the scoring table.
	mux.Handle("/maturity/classify", protect(http.HandlerFunc(handlers.Classify)))

	// Questionnaire endpoints
	qSvc := services.NewQuestionnaireService(db)
	qh := handlers.NewQuestionnaireHandler(db, qSvc)
	mux.Handle("/questionnaires", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			qh.List(w, r)
		case http.MethodPost:
			qh.Submit(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/questionnaires/get", protect(methodOnly(http.MethodGet, qh.Get)))
	mux.Handle("/questionnaires/update", protect(methodOnly(http.MethodPut, qh.Update)))
	mux.Handle("/questionnaires/delete", protect(methodOnly(http.MethodDelete, qh.Delete)))
	mux.Handle("/questionnaires/stats", protect(methodOnly(http.MethodGet, qh.Stats)))
	mux.Handle("/questionnaires/questions", protect(methodOnly(http.MethodGet, qh.Questions)))

	// Roadmap endpoints
	rSvc := services.NewRoadmapService(db)
	rh := handlers.NewRoadmapHandler(db, rSvc)
	mux.Handle("/roadmaps", protect(methodOnly(http.MethodGet, rh.List)))
	mux.Handle("/roadmaps/generate", protect(methodOnly(http.MethodPost, rh.Generate)))
	mux.Handle("/roadmaps/get", protect(methodOnly(http.MethodGet, rh.Get)))
	mux.Handle("/roadmaps/delete", protect(methodOnly(http.MethodDelete, rh.Delete)))
	mux.Handle("/roadmaps/status", protect(methodOnly(http.MethodPut, rh.UpdateStatus)))
	mux.Handle("/roadmaps/tasks", protect(methodOnly(http.MethodPost, rh.AddTask)))
	mux.Handle("/roadmaps/tasks/status", protect(methodOnly(http.MethodPut, rh.UpdateTaskStatus)))
	mux.Handle("/roadmaps/milestones", protect(methodOnly(http.MethodPost, rh.AddMilestone)))

	return withRecover(withLogging(auth.Middleware(mux)))
}

func protect(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func methodOnly(method string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		fn(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
