package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
)

const resetTokenBytes = 32

type EmployeeDirectory interface {
	Register(ctx context.Context, in employee.NewEmployee) (*employee.Employee, error)
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
	FindByEmail(ctx context.Context, email string) (*employee.Employee, error)
	SetPasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// ResetTokenRepository stores single-use password reset tokens. GetByToken returns
// ErrInvalidResetToken for unknown tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *employeeDatamodel.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*employeeDatamodel.PasswordResetToken, error)
	Delete(ctx context.Context, id int64) error
	DeleteForEmployee(ctx context.Context, employeeID int64) error
}

type ResetMailer interface {
	SendPasswordReset(ctx context.Context, name, email, token string, validFor time.Duration) error
	ResetURL(token string) string
}

type Options struct {
	ResetTokenTTL time.Duration
	Production    bool
}

type Service struct {
	employees EmployeeDirectory
	tokens    ResetTokenRepository
	hasher    *BcryptHasher
	issuer    *TokenIssuer
	mailer    ResetMailer
	opts      Options
	now       internal.Clock
	logger    *slog.Logger
}

func NewService(employees EmployeeDirectory, tokens ResetTokenRepository, hasher *BcryptHasher, issuer *TokenIssuer, mailer ResetMailer, opts Options, now internal.Clock, logger *slog.Logger) *Service {
	if now == nil {
		now = internal.SystemClock
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &Service{
		employees: employees,
		tokens:    tokens,
		hasher:    hasher,
		issuer:    issuer,
		mailer:    mailer,
		opts:      opts,
		now:       now,
		logger:    logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*employee.Employee, error) {
	return s.employees.Register(ctx, dto.ToNewEmployee())
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.employees.FindByEmail(ctx, dto.Email)
	if err != nil {
		if internal.TypeOf(err) == internal.ErrorTypeNotFound {
			s.logger.Warn("login failed: unknown email")
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("login failed", "error", err)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	if !s.hasher.Verify(e.PasswordHash, dto.Password) {
		s.logger.Warn("login failed: wrong password", "employee_id", e.ID)
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(e.ID, e.Role)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err, "employee_id", e.ID)
		return nil, internal.NewInternalError("failed to log in", err)
	}

	s.logger.Info("employee logged in", "employee_id", e.ID, "role", e.Role)

	return &LoginResponse{
		Token: token,
		User:  UserSummary{ID: e.ID, Name: e.Name, Email: e.Email, Role: e.Role.String()},
	}, nil
}

// ForgotPassword replaces any outstanding reset tokens with a fresh one and mails it.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (*ForgotPasswordResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.employees.FindByEmail(ctx, dto.Email)
	if err != nil {
		return nil, s.storeError("failed to look up employee", err)
	}

	if err := s.tokens.DeleteForEmployee(ctx, e.ID); err != nil {
		return nil, s.storeError("failed to clear reset tokens", err)
	}

	token, err := newResetToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to create reset token", err)
	}

	row := &employeeDatamodel.PasswordResetToken{
		Token:      token,
		EmployeeID: e.ID,
		ExpiresAt:  s.now().Add(s.opts.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, s.storeError("failed to store reset token", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, e.Name, e.Email, token, s.opts.ResetTokenTTL); err != nil {
		s.logger.Error("failed to send password reset email", "error", err, "employee_id", e.ID)
		if s.opts.Production {
			return nil, internal.ErrMailDeliveryFailed.WithCause(err)
		}
		return &ForgotPasswordResponse{
			Message:    "Email could not be sent; use the token below in development",
			ResetToken: token,
			ResetURL:   s.mailer.ResetURL(token),
		}, nil
	}

	s.logger.Info("password reset email sent", "employee_id", e.ID)
	return &ForgotPasswordResponse{Message: "Password reset link sent to your email"}, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	row, err := s.tokens.GetByToken(ctx, dto.Token)
	if err != nil {
		return s.storeError("failed to look up reset token", err)
	}

	if !s.now().Before(row.ExpiresAt) {
		if err := s.tokens.Delete(ctx, row.ID); err != nil {
			s.logger.Error("failed to delete expired reset token", "error", err, "token_id", row.ID)
		}
		return internal.ErrResetTokenExpired
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("failed to reset password", err)
	}

	if err := s.employees.SetPasswordHash(ctx, row.EmployeeID, hash); err != nil {
		return s.storeError("failed to update password", err)
	}

	if err := s.tokens.DeleteForEmployee(ctx, row.EmployeeID); err != nil {
		return s.storeError("failed to clear reset tokens", err)
	}

	s.logger.Info("password reset", "employee_id", row.EmployeeID)
	return nil
}

// Authenticate resolves a bearer token to the current state of its employee. Every
// failure, including a deleted employee, is reported as ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Principal, error) {
	if token == "" {
		return identity.Principal{}, internal.ErrUnauthenticated
	}

	claims, err := s.issuer.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return identity.Principal{}, internal.ErrUnauthenticated
	}

	e, err := s.employees.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if internal.TypeOf(err) == internal.ErrorTypeNotFound {
			s.logger.Warn("token for unknown employee", "employee_id", claims.EmployeeID)
			return identity.Principal{}, internal.ErrUnauthenticated
		}
		return identity.Principal{}, s.storeError("failed to load employee", err)
	}

	return e.Principal(), nil
}

func (s *Service) storeError(msg string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
