package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Department, error)
	Create(ctx context.Context, p identity.Principal, dto CreateDepartmentDTO) (*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	var dto CreateDepartmentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	d, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d)
}
