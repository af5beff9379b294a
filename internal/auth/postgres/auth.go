package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/auth"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
)

type ResetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

var _ auth.ResetTokenRepository = (*ResetTokenRepository)(nil)

func (r *ResetTokenRepository) Create(ctx context.Context, token *employeeDatamodel.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*employeeDatamodel.PasswordResetToken, error) {
	var row employeeDatamodel.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrInvalidResetToken
		}
		return nil, err
	}
	return &row, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&employeeDatamodel.PasswordResetToken{}, id).Error
}

// DeleteForEmployee removes every token the employee holds.
func (r *ResetTokenRepository) DeleteForEmployee(ctx context.Context, employeeID int64) error {
	return r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Delete(&employeeDatamodel.PasswordResetToken{}).Error
}
