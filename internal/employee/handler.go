package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, p identity.Principal, dto CreateEmployeeDTO) (*Employee, error)
	Directory(ctx context.Context, p identity.Principal) ([]DirectoryEntry, error)
	GroupByDepartment(ctx context.Context, p identity.Principal) ([]DepartmentGroup, error)
	ChangeRole(ctx context.Context, p identity.Principal, id int64, dto UpdateRoleDTO) (*Employee, error)
	ChangeDepartment(ctx context.Context, p identity.Principal, id int64, dto UpdateDepartmentDTO) (*Employee, error)
	ChangeHireDate(ctx context.Context, p identity.Principal, id int64, dto UpdateHireDateDTO) (*Employee, error)
	Delete(ctx context.Context, p identity.Principal, id int64) error
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

// GetCurrentEmployee returns the caller's own profile.
func (h *Handler) GetCurrentEmployee(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	e, err := h.Service.GetByID(r.Context(), p.EmployeeID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e.ToResponse())
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	entries, err := h.Service.Directory(r.Context(), p)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: entries})
}

func (h *Handler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	groups, err := h.Service.GroupByDepartment(r.Context(), p)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DepartmentGroupsResponse{Departments: groups})
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	var dto CreateEmployeeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.RequestLogger(r).Info("CreateEmployee: employee created", "created_id", e.ID, "by", p.EmployeeID)
	h.WriteJSON(w, http.StatusCreated, e.ToResponse())
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRoleDTO
	h.update(w, r, &dto, func(ctx context.Context, p identity.Principal, id int64) (*Employee, error) {
		return h.Service.ChangeRole(ctx, p, id, dto)
	})
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto UpdateDepartmentDTO
	h.update(w, r, &dto, func(ctx context.Context, p identity.Principal, id int64) (*Employee, error) {
		return h.Service.ChangeDepartment(ctx, p, id, dto)
	})
}

func (h *Handler) UpdateHireDate(w http.ResponseWriter, r *http.Request) {
	var dto UpdateHireDateDTO
	h.update(w, r, &dto, func(ctx context.Context, p identity.Principal, id int64) (*Employee, error) {
		return h.Service.ChangeHireDate(ctx, p, id, dto)
	})
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, dto interface{}, apply func(context.Context, identity.Principal, int64) (*Employee, error)) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteUnauthenticated(w, r)
		return
	}

	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if !h.DecodeJSON(w, r, dto) {
		return
	}

	e, err := apply(r.Context(), p, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e.ToResponse())
}
