// Package http provides http transport for convergence
package http

import (
	stdhttp "net/http"
	"strconv"

	"walletsync/internal/modkit/httpkit"
	perr "walletsync/internal/platform/errors"
	dom "walletsync/internal/services/convergence/domain"
)

// Register mounts the convergence routes
func Register(r httpkit.Router, s dom.ConvergencePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[dom.KycInput](r, "/kyc/poll", h.pollKyc)
	httpkit.PostJSON[dom.KycInput](r, "/kyc/check", h.checkTier)
	httpkit.PostJSON[dom.OrderInput](r, "/orders/poll", h.pollOrder)
	httpkit.PostJSON[dom.CardInput](r, "/cards/poll", h.pollCard)
	httpkit.Get(r, "/outcomes", h.history)
}

type handlers struct{ svc dom.ConvergencePort }

// swagger:route POST /convergence/kyc/poll Convergence pollKyc
// @Summary Converge the KYC state of a user
// @Tags convergence
// @Accept json
// @Produce json
// @Param payload body domain.KycInput true "User"
// @Success 200 {object} domain.KycResult "ok"
// @Router /convergence/kyc/poll [post]
func (h *handlers) pollKyc(r *stdhttp.Request, in dom.KycInput) (any, error) {
	return h.svc.PollForKycState(r.Context(), in.UserID)
}

// swagger:route POST /convergence/kyc/check Convergence checkTier
// @Summary Classify the KYC tiers of a user once
// @Tags convergence
// @Accept json
// @Produce json
// @Param payload body domain.KycInput true "User"
// @Success 200 {object} domain.KycResult "ok"
// @Router /convergence/kyc/check [post]
func (h *handlers) checkTier(r *stdhttp.Request, in dom.KycInput) (any, error) {
	return h.svc.CheckTierLevel(r.Context(), in.UserID)
}

// swagger:route POST /convergence/orders/poll Convergence pollOrder
// @Summary Converge a buy order
// @Tags convergence
// @Accept json
// @Produce json
// @Param payload body domain.OrderInput true "Order"
// @Success 200 {object} domain.OrderResult "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /convergence/orders/poll [post]
func (h *handlers) pollOrder(r *stdhttp.Request, in dom.OrderInput) (any, error) {
	return h.svc.PollOrderStatus(r.Context(), in.OrderID)
}

// swagger:route POST /convergence/cards/poll Convergence pollCard
// @Summary Converge a payment card activation
// @Tags convergence
// @Accept json
// @Produce json
// @Param payload body domain.CardInput true "Card"
// @Success 200 {object} domain.CardResult "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /convergence/cards/poll [post]
func (h *handlers) pollCard(r *stdhttp.Request, in dom.CardInput) (any, error) {
	return h.svc.PollCardStatus(r.Context(), in.CardID)
}

// swagger:route GET /convergence/outcomes Convergence history
// @Summary Recorded outcomes of a subject, newest first
// @Tags convergence
// @Produce json
// @Param subject query string true "order, card or user id"
// @Param limit query int false "max rows (default 20)"
// @Success 200 {array} domain.OutcomeRecord "ok"
// @Router /convergence/outcomes [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	q := dom.HistoryQuery{Subject: r.URL.Query().Get("subject")}
	if q.Subject == "" {
		return nil, perr.InvalidArgf("subject is required")
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return nil, perr.InvalidArgf("limit must be between 1 and 200")
		}
		q.Limit = n
	}
	return h.svc.History(r.Context(), q)
}
