package http

import (
	"encoding/json"
	"net/http"

	"gamebridge.io/internal/application/usecase"
	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	validateIntent *usecase.ValidateIntentUseCase
	settleResult   *usecase.SettleResultUseCase
	getAssets      *usecase.GetAssetsUseCase
	guard          port.RequestValidator
	logger         logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	validateIntent *usecase.ValidateIntentUseCase,
	settleResult *usecase.SettleResultUseCase,
	getAssets *usecase.GetAssetsUseCase,
	guard port.RequestValidator,
	logger logger.Logger,
) *Handler {
	return &Handler{
		validateIntent: validateIntent,
		settleResult:   settleResult,
		getAssets:      getAssets,
		guard:          guard,
		logger:         logger,
	}
}

// HandleValidate handles POST /api/validate requests
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := requestLoggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := sessionIDFrom(ctx)
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, CodeInvalidSession)
		return
	}

	var req entity.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger.LogError(ctx, "Failed to parse validate request", err)
		writeError(w, http.StatusBadRequest, CodeInvalidRequest)
		return
	}

	result, err := h.validateIntent.Execute(ctx, sessionID, &req)
	if err != nil {
		status, code := mapError(err)
		requestLogger.LogWarning(ctx, "Validate request rejected",
			"session_id", sessionID,
			"uuid", req.UUID,
			"code", code,
			"reason", err.Error())
		writeError(w, status, code)
		return
	}

	writeSuccess(w, result)
}

// HandleResult handles POST /api/result settlement callbacks
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := requestLoggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req entity.SettleResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger.LogError(ctx, "Failed to parse settlement callback", err)
		writeError(w, http.StatusBadRequest, CodeInvalidRequest)
		return
	}

	if err := h.settleResult.Execute(ctx, &req); err != nil {
		status, code := mapError(err)
		requestLogger.LogWarning(ctx, "Settlement callback rejected",
			"uuid", req.UUID,
			"code", code,
			"reason", err.Error())
		writeError(w, status, code)
		return
	}

	writeSuccess(w, nil)
}

// HandleAssets handles GET /api/assets requests
func (h *Handler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := requestLoggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := sessionIDFrom(ctx)
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, CodeInvalidSession)
		return
	}

	assets, err := h.getAssets.Execute(ctx, sessionID)
	if err != nil {
		requestLogger.LogError(ctx, "Failed to get session assets", err, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, CodeInternalError)
		return
	}

	writeSuccess(w, assets)
}

// HandleHealth handles GET /health requests
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Apply middleware chain
	validateHandler := RequestIDMiddleware(
		LoggingMiddleware(
			AuthGateMiddleware(
				HMACGuardMiddleware(h.HandleValidate, h.guard, h.logger),
				h.logger,
			),
			h.logger,
		),
		h.logger,
	)
	resultHandler := RequestIDMiddleware(
		LoggingMiddleware(
			HMACGuardMiddleware(h.HandleResult, h.guard, h.logger),
			h.logger,
		),
		h.logger,
	)
	assetsHandler := RequestIDMiddleware(
		LoggingMiddleware(
			AuthGateMiddleware(h.HandleAssets, h.logger),
			h.logger,
		),
		h.logger,
	)

	mux.HandleFunc("/api/validate", validateHandler)
	mux.HandleFunc("/api/result", resultHandler)
	mux.HandleFunc("/api/assets", assetsHandler)
	mux.HandleFunc("/health", h.HandleHealth)

	return mux
}
