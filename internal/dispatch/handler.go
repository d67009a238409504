package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HandlerPath is where the dispatch endpoint is mounted.
const HandlerPath = "/api/reminders/dispatch"

// DefaultRunTimeout bounds a run started over HTTP. The run outlives the
// request, so a dropped caller cannot abort it between send and mark.
const DefaultRunTimeout = 5 * time.Minute

// Runner runs one dispatch pass.
type Runner interface {
	Run(ctx context.Context) (*Result, error)
}

// TokenVerifier checks the bearer token presented to the endpoint.
type TokenVerifier interface {
	Verify(token string) bool
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Handler triggers a dispatch run over HTTP. GET and POST are accepted and
// no body is required.
type Handler struct {
	runner   Runner
	verifier TokenVerifier
	logger   *slog.Logger
	timeout  time.Duration
}

// NewHandler creates the dispatch endpoint. A nil verifier leaves it open.
func NewHandler(runner Runner, verifier TokenVerifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{runner: runner, verifier: verifier, logger: logger, timeout: DefaultRunTimeout}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	if h.verifier != nil {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !h.verifier.Verify(token) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	result, err := h.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Dispatch run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
