// Package access exposes the policy engine as a decision point over
// HTTP for services that cannot link the library directly. Every
// decision and break-glass mint is forwarded to the audit recorder.
package access

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cerberus100/Telehealthcrm-sub000/internal/platform/audit"
	"github.com/cerberus100/Telehealthcrm-sub000/internal/policy"
)

type Handler struct {
	recorder   audit.Recorder
	logger     zerolog.Logger
	maxMinutes int
	nowFn      func() time.Time
}

// NewHandler creates the PDP handler. maxMinutes is the ceiling on
// break-glass session length enforced at minting time.
func NewHandler(recorder audit.Recorder, logger zerolog.Logger, maxMinutes int) *Handler {
	return newHandler(recorder, logger, maxMinutes, time.Now)
}

// newHandler accepts a clock function so tests can pin the evaluation
// instant.
func newHandler(recorder audit.Recorder, logger zerolog.Logger, maxMinutes int, nowFn func() time.Time) *Handler {
	return &Handler{recorder: recorder, logger: logger, maxMinutes: maxMinutes, nowFn: nowFn}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/decision", h.Decide)
	api.POST("/redact", h.Redact)
	api.POST("/break-glass", h.MintBreakGlass)
}

// DecisionRequest is one (actor, resource, action) evaluation.
type DecisionRequest struct {
	Resource string        `json:"resource"`
	Action   string        `json:"action"`
	Claims   policy.Claims `json:"claims"`
}

// DecisionResponse deliberately carries no reason: denials must stay
// opaque to probing clients.
type DecisionResponse struct {
	Allowed bool `json:"allowed"`
}

func (h *Handler) Decide(c echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resource, ok := policy.ParseResource(req.Resource)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown resource")
	}
	action, ok := policy.ParseAction(req.Action)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}

	now := h.nowFn()
	allowed := policy.CanAccessAt(resource, action, req.Claims, now)

	ev := audit.NewDecisionEvent(req.Claims, resource, action, allowed, now)
	if err := h.recorder.RecordDecision(c.Request().Context(), ev); err != nil {
		// Audit is observability, not authorization: the decision
		// stands even when the recorder is down.
		h.logger.Error().Err(err).Str("event_id", ev.ID.String()).Msg("audit recorder failed")
	}

	return c.JSON(http.StatusOK, DecisionResponse{Allowed: allowed})
}

// RedactRequest asks for a record to be masked for the given role.
type RedactRequest struct {
	Record  map[string]any `json:"record"`
	Role    string         `json:"role"`
	Context string         `json:"context,omitempty"`
}

type RedactResponse struct {
	Record map[string]any `json:"record"`
}

func (h *Handler) Redact(c echo.Context) error {
	var req RedactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	masked := policy.MaskPHI(req.Record, policy.Role(req.Role), policy.RecordContext(req.Context))
	return c.JSON(http.StatusOK, RedactResponse{Record: masked})
}

// BreakGlassRequest mints an emergency session expiry. The approval
// workflow calling this endpoint owns the decision to grant; this
// handler only enforces the duration ceiling and produces the audit
// trail.
type BreakGlassRequest struct {
	OrgID   string `json:"org_id"`
	Role    string `json:"role"`
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason"`
}

type BreakGlassResponse struct {
	BreakGlassUntil int64 `json:"break_glass_until"`
}

func (h *Handler) MintBreakGlass(c echo.Context) error {
	var req BreakGlassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Minutes <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "minutes must be positive")
	}
	if req.Minutes > h.maxMinutes {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "session exceeds the configured ceiling")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "reason is required")
	}

	now := h.nowFn()
	until := policy.BreakGlassUntilAt(req.Minutes, now)

	ev := audit.OverrideEvent{
		ID:      uuid.New(),
		At:      now.UTC(),
		OrgID:   req.OrgID,
		Role:    policy.Role(req.Role),
		Reason:  req.Reason,
		Minutes: req.Minutes,
		Until:   until,
	}
	if err := h.recorder.RecordOverride(c.Request().Context(), ev); err != nil {
		h.logger.Error().Err(err).Str("event_id", ev.ID.String()).Msg("audit recorder failed")
	}

	return c.JSON(http.StatusCreated, BreakGlassResponse{BreakGlassUntil: until})
}
