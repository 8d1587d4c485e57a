package handlers

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/dispatch"
)

// DispatchHandler exposes the dispatch loop and the assignment engine.
type DispatchHandler struct {
	loop     passRunner
	assigner orderAssigner
	pool     poolReader
	logger   logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, loop passRunner, assigner orderAssigner, pool poolReader) *DispatchHandler {
	return &DispatchHandler{loop: loop, assigner: assigner, pool: pool, logger: logger}
}

// RunPass handles POST /dispatch/pass and returns the finished pass report.
func (h *DispatchHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	report := h.loop.RunPass(r.Context(), dispatch.TriggerManual)
	writeJSON(h.logger, w, r, http.StatusOK, report)
}

// Status handles GET /dispatch/status.
func (h *DispatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Running: h.loop.Running()}
	if last, ok := h.loop.LastReport(); ok {
		resp.LastPass = &last
	}
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

// Assign handles POST /dispatch/orders/{orderId}/assign.
func (h *DispatchHandler) Assign(w http.ResponseWriter, r *http.Request) {
	orderID := orderIDFromURL(r)
	if orderID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	res := h.assigner.Assign(r.Context(), domain.Order{ID: orderID})
	switch res.Outcome {
	case domain.OutcomeAssigned:
		writeJSON(h.logger, w, r, http.StatusOK, assignResultToResponse(res))
	case domain.OutcomeNoPartner:
		writeError(h.logger, w, r, http.StatusConflict, "no partner available")
	case domain.OutcomeSkipped:
		switch {
		case errors.Is(res.Err, apperr.ErrNotFound):
			writeError(h.logger, w, r, http.StatusNotFound, "order not found")
		case errors.Is(res.Err, apperr.ErrInvalid):
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		case errors.Is(res.Err, assignment.ErrInFlight):
			writeError(h.logger, w, r, http.StatusConflict, "assignment in progress")
		default:
			writeError(h.logger, w, r, http.StatusConflict, "order is not pending")
		}
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Pool handles GET /dispatch/pool.
func (h *DispatchHandler) Pool(w http.ResponseWriter, r *http.Request) {
	waiting, err := h.pool.ListWaiting(r.Context())
	if err != nil {
		h.logger.Error("list waiting partners", logx.Err(err))
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	delivering, err := h.pool.ListDelivering(r.Context())
	if err != nil {
		h.logger.Error("list delivering partners", logx.Err(err))
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, poolResponse{
		Waiting:    partnerIDs(waiting),
		Delivering: partnerIDs(delivering),
	})
}
