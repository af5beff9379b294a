package department

import (
	"strings"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name string `json:"name"`
}

func (dto *CreateDepartmentDTO) Validate() *internal.AppError {
	dto.Name = strings.TrimSpace(dto.Name)

	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	return v.Validate()
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
