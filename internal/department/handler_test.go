package department_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/leaveflow/internal"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/department"
	departmentPostgres "github.com/frahmantamala/leaveflow/internal/department/postgres"
	"github.com/frahmantamala/leaveflow/internal/transport"
	applogger "github.com/frahmantamala/leaveflow/pkg/logger"
)

var _ = Describe("Department Handler Integration", func() {
	var (
		db      *gorm.DB
		service *department.Service
		handler *department.Handler
		hr      identity.Principal
	)

	BeforeEach(func() {
		var err error
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&departmentDatamodel.Department{})).To(Succeed())

		repo := departmentPostgres.NewDepartmentRepository(db)
		service = department.NewService(repo, applogger.Discard())
		handler = department.NewHandler(transport.NewBaseHandler(applogger.Discard()), service)

		for _, name := range []string{"Engineering", "Human Resources"} {
			Expect(repo.Create(context.Background(), &departmentDatamodel.Department{Name: name})).To(Succeed())
		}

		hr = identity.Principal{EmployeeID: 1, Role: identity.RoleHR}
	})

	It("lists departments alphabetically", func() {
		req := httptest.NewRequest(http.MethodGet, "/departments", nil)
		w := httptest.NewRecorder()

		handler.ListDepartments(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp department.DepartmentsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Departments).To(HaveLen(2))
		Expect(resp.Departments[0].Name).To(Equal("Engineering"))
	})

	It("creates a department for HR", func() {
		req := httptest.NewRequest(http.MethodPost, "/hr/departments", strings.NewReader(`{"name":"Finance"}`))
		req = req.WithContext(identity.ContextWithPrincipal(req.Context(), hr))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var d department.Department
		Expect(json.NewDecoder(w.Body).Decode(&d)).To(Succeed())
		Expect(d.ID).To(BeNumerically(">", 0))
		Expect(d.Name).To(Equal("Finance"))
	})

	It("rejects a duplicate name regardless of case", func() {
		_, err := service.Create(context.Background(), hr, department.CreateDepartmentDTO{Name: "engineering"})
		Expect(err).To(MatchError(internal.ErrDepartmentExists))
	})

	It("rejects a blank name", func() {
		_, err := service.Create(context.Background(), hr, department.CreateDepartmentDTO{Name: "  "})
		Expect(internal.TypeOf(err)).To(Equal(internal.ErrorTypeValidation))
	})

	It("forbids a plain manager from creating departments", func() {
		manager := identity.Principal{EmployeeID: 2, Role: identity.RoleManager}
		req := httptest.NewRequest(http.MethodPost, "/hr/departments", strings.NewReader(`{"name":"Sales"}`))
		req = req.WithContext(identity.ContextWithPrincipal(req.Context(), manager))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("requires a principal", func() {
		req := httptest.NewRequest(http.MethodPost, "/hr/departments", strings.NewReader(`{"name":"Sales"}`))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns NotFound for an unknown id", func() {
		_, err := service.GetByID(context.Background(), 404)
		Expect(err).To(MatchError(internal.ErrDepartmentNotFound))
	})
})
