// Package http provides http transport for login attempts
package http

import (
	stdhttp "net/http"

	"walletsync/internal/modkit/httpkit"
	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/logger"
	dom "walletsync/internal/services/auth/domain"
)

// Register mounts the login attempt routes
func Register(r httpkit.Router, s dom.AuthPort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[dom.StartInput](r, "/attempts", h.start)
	httpkit.Get(r, "/attempts/{id}", h.attempt)
	httpkit.PostJSON[dom.SecondFactorInput](r, "/attempts/{id}/second-factor", h.secondFactor)
	httpkit.Post(r, "/attempts/{id}/cancel", h.cancel)
}

type handlers struct{ svc dom.AuthPort }

// swagger:route POST /auth/attempts Auth startAttempt
// @Summary Start a login attempt
// @Description Runs until the login finishes or waits for a second factor
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.StartInput true "Credentials"
// @Success 200 {object} domain.AttemptView "ok"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Router /auth/attempts [post]
func (h *handlers) start(r *stdhttp.Request, in dom.StartInput) (any, error) {
	v, err := h.svc.Start(r.Context(), in)
	if err == nil {
		if op := httpkit.Operator(r); op != "" {
			logger.C(r.Context()).Info().Str("operator", op).Str("attempt_id", v.ID).Msg("login attempt started")
		}
	}
	return v, err
}

// swagger:route GET /auth/attempts/{id} Auth getAttempt
// @Summary State and notifications of a login attempt
// @Tags auth
// @Produce json
// @Param id path string true "Attempt id"
// @Success 200 {object} domain.AttemptView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /auth/attempts/{id} [get]
func (h *handlers) attempt(r *stdhttp.Request) (any, error) {
	id, err := attemptID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Attempt(r.Context(), id)
}

// swagger:route POST /auth/attempts/{id}/second-factor Auth submitSecondFactor
// @Summary Submit a second factor code
// @Tags auth
// @Accept json
// @Produce json
// @Param id path string true "Attempt id"
// @Param payload body domain.SecondFactorInput true "Code"
// @Success 200 {object} domain.AttemptView "ok"
// @Failure 409 {object} httpkit.Envelope "not awaiting a code"
// @Router /auth/attempts/{id}/second-factor [post]
func (h *handlers) secondFactor(r *stdhttp.Request, in dom.SecondFactorInput) (any, error) {
	id, err := attemptID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitSecondFactor(r.Context(), id, in.Code)
}

// swagger:route POST /auth/attempts/{id}/cancel Auth cancelAttempt
// @Summary Cancel a login attempt
// @Tags auth
// @Produce json
// @Param id path string true "Attempt id"
// @Success 200 {object} domain.AttemptView "ok"
// @Router /auth/attempts/{id}/cancel [post]
func (h *handlers) cancel(r *stdhttp.Request) (any, error) {
	id, err := attemptID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Cancel(r.Context(), id)
}

func attemptID(r *stdhttp.Request) (string, error) {
	id := httpkit.Param(r, "id")
	if id == "" {
		return "", perr.InvalidArgf("attempt id is required")
	}
	return id, nil
}
