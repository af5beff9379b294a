package entitlement

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/transport"
)

type Sweeper interface {
	Sweep(ctx context.Context) (Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Sweeper Sweeper
}

func NewHandler(baseHandler *transport.BaseHandler, sweeper Sweeper) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Sweeper:     sweeper,
	}
}

// Recompute runs a sweep inside the request and returns its counts.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}
	if err := identity.Require(p, identity.CapRecompute); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	res, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		h.WriteAppError(w, r, internal.NewInternalError("failed to recompute annual leave", err))
		return
	}

	h.RequestLogger(r).Info("Recompute: manual sweep finished", "by", p.EmployeeID, "updated", res.Updated)
	h.WriteJSON(w, http.StatusOK, res)
}
