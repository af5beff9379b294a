package auth

import (
	"strings"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
)

type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToNewEmployee maps self-registration onto the single creation path; the role is always employee.
func (d RegisterDTO) ToNewEmployee() employee.NewEmployee {
	return employee.NewEmployee{
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
		Role:     identity.RoleEmployee,
	}
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (d ForgotPasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Required().Email()
	return v.Validate()
}

type ResetPasswordDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (d ResetPasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("newPassword", d.NewPassword).Required().MinLength(validation.MinPasswordLength, internal.ErrCodePasswordTooShort)
	return v.Validate()
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// ForgotPasswordResponse only carries the token when mail delivery failed outside production.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
