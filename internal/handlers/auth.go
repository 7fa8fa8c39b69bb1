package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/A7medBenRomdhanO/backend/internal/auth"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
	"github.com/A7medBenRomdhanO/backend/internal/models"
	"github.com/A7medBenRomdhanO/backend/internal/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup", h.signup)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err == nil && count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_already_registered", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user := models.User{Email: req.Email, Password: string(hash), Nom: req.Nom, Prenom: req.Prenom, Role: "user"}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_create_user", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// même réponse qu'un mauvais mot de passe pour ne pas révéler l'existence du compte
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
