package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/auth"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/store"
)

// AuthService is the signup/login surface the API exposes.
type AuthService interface {
	Signup(ctx context.Context, email, password, username string) (*store.User, *game.Profile, error)
	Login(ctx context.Context, email, password string) (*store.User, *game.Profile, error)
}

// NewRouter builds the HTTP surface: auth endpoints, the websocket endpoint,
// and the static client assets.
func NewRouter(svc AuthService, ws http.Handler, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/signup", handleSignup(svc))
	r.Post("/auth/login", handleLogin(svc))
	r.Handle("/ws", ws)
	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type userPayload struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

type playerPayload struct {
	Id             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	X              int       `json:"x_pos"`
	Y              int       `json:"y_pos"`
	Life           int       `json:"life"`
	LifeMax        int       `json:"life_max"`
	Money          int       `json:"money"`
	EquippedItemId string    `json:"equipped_item_id,omitempty"`
}

type authResponse struct {
	Message string        `json:"message"`
	User    userPayload   `json:"user"`
	Player  playerPayload `json:"player"`
}

func handleSignup(svc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, profile, err := svc.Signup(r.Context(), req.Email, req.Password, req.Username)
		if errors.Is(err, store.ErrUserExists) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "signup failed", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, newAuthResponse("signup successful", user, profile))
	}
}

func handleLogin(svc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, profile, err := svc.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		writeJSON(w, http.StatusOK, newAuthResponse("login successful", user, profile))
	}
}

func newAuthResponse(msg string, user *store.User, profile *game.Profile) authResponse {
	return authResponse{
		Message: msg,
		User:    userPayload{Id: user.Id, Email: user.Email, Username: user.Username},
		Player: playerPayload{
			Id:             profile.Id,
			Username:       profile.Username,
			X:              profile.X,
			Y:              profile.Y,
			Life:           profile.Life,
			LifeMax:        profile.LifeMax,
			Money:          profile.Money,
			EquippedItemId: string(profile.EquippedItem),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
