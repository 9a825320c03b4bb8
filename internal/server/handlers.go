package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/igsync/internal/shared"
)

// APIResponse is the JSON envelope for every API reply.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// InstagramHandler serves the JSON API for linking, syncing and unlinking
// Instagram accounts. Request validation and response shaping live here;
// all behavior lives in the engine.
type InstagramHandler struct {
	engine AccountService
	logger *log.Logger
}

// NewInstagramHandler creates an [InstagramHandler] backed by the given engine.
func NewInstagramHandler(engine AccountService, logger *log.Logger) *InstagramHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &InstagramHandler{engine: engine, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *InstagramHandler) Routes() []string {
	return []string{
		"/api/instagram/link",
		"/api/instagram/callback",
		"/api/instagram/data",
		"/api/instagram/refresh",
		"/api/instagram/unlink",
		"/api/instagram/status",
	}
}

// ServeHTTP dispatches to the operation matching the request path.
func (h *InstagramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/instagram/link":
		h.handleLink(w, r)
	case "/api/instagram/callback":
		h.handleCallback(w, r)
	case "/api/instagram/data":
		h.handleData(w, r)
	case "/api/instagram/refresh":
		h.handleRefresh(w, r)
	case "/api/instagram/unlink":
		h.handleUnlink(w, r)
	case "/api/instagram/status":
		h.handleStatus(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *InstagramHandler) handleLink(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	intent, err := h.engine.InitiateLink(userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Redirect user to the authorization URL to complete linking",
		Data:    intent,
	})
}

func (h *InstagramHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	result, err := h.engine.CompleteLink(r.Context(), code, state, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Instagram account linked successfully",
		Data:    result,
	})
}

func (h *InstagramHandler) handleData(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	mediaLimit := 0
	if raw := r.URL.Query().Get("mediaLimit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, shared.ErrInvalidInput)
			return
		}
		mediaLimit = parsed
	}

	result, err := h.engine.Sync(r.Context(), userID, mediaLimit, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Instagram data fetched and stored successfully",
		Data:    result,
	})
}

func (h *InstagramHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	result, err := h.engine.RefreshToken(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Token refreshed successfully",
		Data:    result,
	})
}

func (h *InstagramHandler) handleUnlink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	deleteData := r.URL.Query().Get("deleteData") == "true"

	if err := h.engine.Unlink(r.Context(), userID, deleteData); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Instagram account unlinked",
	})
}

func (h *InstagramHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}

	linked, err := h.engine.IsLinked(userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Link status",
		Data:    map[string]bool{"linked": linked},
	})
}

func (h *InstagramHandler) writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}

func (h *InstagramHandler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()

	// Unexpected faults stay opaque; the cause goes to the log only.
	if status == http.StatusInternalServerError && !isKnown(err) {
		h.logger.Error("unexpected error", "err", err)
		message = "an unexpected error occurred"
	} else {
		h.logger.Warn("request failed", "status", status, "err", err)
	}

	h.writeJSON(w, status, APIResponse{Success: false, Message: message})
}

// StatusFor maps the shared error sentinels to HTTP statuses. Client-class
// failures (forged state, missing business account, bad input) map to 4xx;
// upstream and unknown faults map to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrNoBusinessAccount),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func isKnown(err error) bool {
	for _, sentinel := range []error{
		shared.ErrTokenExchange,
		shared.ErrRefreshFailed,
		shared.ErrProfileFetch,
		shared.ErrMediaFetch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
