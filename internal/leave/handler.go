package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, p identity.Principal, dto CreateLeaveDTO) (*Request, error)
	Approve(ctx context.Context, p identity.Principal, id int64) (*Request, error)
	Reject(ctx context.Context, p identity.Principal, id int64, comment string) (*Request, error)
	ListMine(ctx context.Context, p identity.Principal) (*MyLeavesResponse, error)
	ListForScope(ctx context.Context, p identity.Principal, filter ScopeFilter) ([]*Request, error)
	EmployeeLeaveStatus(ctx context.Context, p identity.Principal, employeeID int64) (*EmployeeLeaveStatusResponse, error)
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

func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	var dto CreateLeaveDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	request, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, request.ToResponse())
}

func (h *Handler) ListMyLeaves(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	resp, err := h.Service.ListMine(r.Context(), p)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// ListScopedLeaves serves both the manager and the HR listing; the service narrows by role.
func (h *Handler) ListScopedLeaves(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	query := r.URL.Query()
	filter, verr := ParseScopeFilter(query.Get("status"), query.Get("departmentId"))
	if verr != nil {
		h.WriteAppError(w, r, verr)
		return
	}

	requests, err := h.Service.ListForScope(r.Context(), p, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToScopedResponse(requests))
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	request, err := h.Service.Approve(r.Context(), p, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request.ToResponse())
}

// RejectLeave accepts an empty body; the comment is optional.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto RejectLeaveDTO
	if !h.DecodeOptionalJSON(w, r, &dto) {
		return
	}

	request, err := h.Service.Reject(r.Context(), p, id, dto.Comment)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request.ToResponse())
}

func (h *Handler) GetEmployeeLeaveStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.Service.EmployeeLeaveStatus(r.Context(), p, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
