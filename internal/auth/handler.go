package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
	"github.com/frahmantamala/leaveflow/internal/transport"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*employee.Employee, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (*ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	Authenticate(ctx context.Context, token string) (identity.Principal, error)
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e.ToResponse())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	resp, err := h.Service.ForgotPassword(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.ResetPassword(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// AuthMiddleware resolves the bearer token to a principal. Every failure gets the same 401 body.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.RequestLogger(r).Debug("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteUnauthenticated(w, r)
			return
		}

		p, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.WriteAppError(w, r, err)
			return
		}

		ctx := identity.ContextWithPrincipal(r.Context(), p)
		ctx = logger.With(ctx, "employee_id", p.EmployeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
