package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/leaveflow/internal/auth"
	authPostgres "github.com/frahmantamala/leaveflow/internal/auth/postgres"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/leave"
	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/department"
	departmentPostgres "github.com/frahmantamala/leaveflow/internal/department/postgres"
	"github.com/frahmantamala/leaveflow/internal/employee"
	employeePostgres "github.com/frahmantamala/leaveflow/internal/employee/postgres"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
	entitlementPostgres "github.com/frahmantamala/leaveflow/internal/entitlement/postgres"
	"github.com/frahmantamala/leaveflow/internal/leave"
	leavePostgres "github.com/frahmantamala/leaveflow/internal/leave/postgres"
	"github.com/frahmantamala/leaveflow/internal/notification"
	"github.com/frahmantamala/leaveflow/internal/stats"
	statsPostgres "github.com/frahmantamala/leaveflow/internal/stats/postgres"
	"github.com/frahmantamala/leaveflow/internal/transport"
	"github.com/frahmantamala/leaveflow/internal/transport/rest"
	"github.com/frahmantamala/leaveflow/internal/transport/swagger"
	applogger "github.com/frahmantamala/leaveflow/pkg/logger"
)

const jwtSecret = "router-test-secret-with-at-least-32-chars"

type apiClient struct {
	handler http.Handler
}

func (c apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c apiClient) login(email, password string) string {
	w := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
	var resp auth.LoginResponse
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp.Token
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var out T
	ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), &out)).To(Succeed(), w.Body.String())
	return out
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed(), w.Body.String())
	return body.Error.Code
}

var _ = Describe("Router", func() {
	var (
		client      apiClient
		router      *chi.Mux
		engineering int64
		sales       int64
		hrToken     string
	)

	BeforeEach(func() {
		ctx := context.Background()
		lg := applogger.Discard()
		now := func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&departmentDatamodel.Department{},
			&employeeDatamodel.Employee{},
			&employeeDatamodel.PasswordResetToken{},
			&leaveDatamodel.LeaveRequest{},
		)).To(Succeed())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sqlDB.Close)
		sqlxDB := sqlx.NewDb(sqlDB, "sqlite3")

		sender := notification.NewLogSender(lg)
		dispatcher := notification.NewDispatcher(sender, notification.DispatcherConfig{Workers: 1, QueueSize: 10}, lg)
		DeferCleanup(dispatcher.Shutdown)
		notifier, err := notification.NewNotifier(sender, dispatcher, "http://localhost:3000", lg)
		Expect(err).NotTo(HaveOccurred())
		bus := events.NewEventBus(lg)
		notifier.RegisterEventHandlers(bus)
		DeferCleanup(func() { _ = bus.Wait(context.Background()) })

		departmentRepo := departmentPostgres.NewDepartmentRepository(db)
		for _, name := range []string{"Engineering", "Sales", "Human Resources"} {
			d := &departmentDatamodel.Department{Name: name}
			Expect(departmentRepo.Create(ctx, d)).To(Succeed())
			switch name {
			case "Engineering":
				engineering = d.ID
			case "Sales":
				sales = d.ID
			}
		}

		hasher := auth.NewBcryptHasher(4)
		issuer := auth.NewTokenIssuer(jwtSecret, time.Hour, now)
		employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(db), departmentRepo, hasher, bus, now, lg)
		authService := auth.NewService(employeeService, authPostgres.NewResetTokenRepository(db), hasher, issuer, notifier,
			auth.Options{ResetTokenTTL: time.Hour}, now, lg)
		leaveService := leave.NewService(leavePostgres.NewLeaveRepository(db), employeeService, bus, now, lg)
		job := entitlement.NewJob(entitlementPostgres.NewEntitlementStore(sqlxDB), now, lg)

		base := transport.NewBaseHandler(lg)
		doc, err := swagger.LoadSpec(ctx, "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:        rest.NewHealthHandler(sqlDB),
			Auth:          auth.NewHandler(base, authService),
			Authorization: auth.NewAuthorization(base),
			Employee:      employee.NewHandler(base, employeeService),
			Department:    department.NewHandler(base, department.NewService(departmentRepo, lg)),
			Leave:         leave.NewHandler(base, leaveService),
			Stats:         stats.NewHandler(base, stats.NewService(statsPostgres.NewStatsStore(sqlxDB), lg)),
			Entitlement:   entitlement.NewHandler(base, job),
			OpenAPI:       doc,
		}, []string{"http://localhost:3000"}, lg)
		client = apiClient{handler: router}

		_, err = employeeService.Register(ctx, employee.NewEmployee{
			Name:     "Hana HR",
			Email:    "hana@example.com",
			Password: "secret123",
			Role:     identity.RoleHR,
		})
		Expect(err).NotTo(HaveOccurred())
		hrToken = client.login("hana@example.com", "secret123")
	})

	// hire registers an employee through HR and returns their id and token.
	hire := func(name, email, role string, departmentID int64, hireDate string) (int64, string) {
		w := client.do(http.MethodPost, "/hr/employees", hrToken, map[string]interface{}{
			"name":         name,
			"email":        email,
			"password":     "secret123",
			"role":         role,
			"departmentId": departmentID,
			"hireDate":     hireDate,
		})
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		created := decode[employee.EmployeeResponse](w)
		return created.ID, client.login(email, "secret123")
	}

	Describe("public endpoints", func() {
		It("answers the probes without a token", func() {
			Expect(client.do(http.MethodGet, "/ping", "", nil).Code).To(Equal(http.StatusOK))

			w := client.do(http.MethodGet, "/health", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode[rest.HealthResponse](w).Status).To(Equal(rest.HealthHealthy))
		})

		It("serves the OpenAPI document", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yml", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("LeaveFlow API"))
		})

		It("tags every response with a trace id", func() {
			w := client.do(http.MethodGet, "/ping", "", nil)
			Expect(w.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
		})
	})

	Describe("authentication", func() {
		It("registers, logs in and reads the profile", func() {
			w := client.do(http.MethodPost, "/auth/register", "", map[string]string{
				"name": "Ali", "email": "Ali@Example.com", "password": "secret123",
			})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			registered := decode[employee.EmployeeResponse](w)
			Expect(registered.Role).To(Equal(identity.RoleEmployee))
			Expect(registered.AnnualLeaveDays).To(Equal(14))

			token := client.login("ali@example.com", "secret123")
			w = client.do(http.MethodGet, "/me", token, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode[employee.EmployeeResponse](w).Email).To(Equal("ali@example.com"))
		})

		It("rejects a duplicate registration", func() {
			w := client.do(http.MethodPost, "/auth/register", "", map[string]string{
				"name": "Hana again", "email": "hana@example.com", "password": "secret123",
			})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns 401 without a token and for a bad token", func() {
			w := client.do(http.MethodGet, "/leaves/mine", "", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			missing := w.Body.String()

			w = client.do(http.MethodGet, "/leaves/mine", "not-a-token", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(Equal(missing))
		})

		It("returns 401 for bad credentials", func() {
			w := client.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "hana@example.com", "password": "wrong"})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("issues a reset link for a known email", func() {
			w := client.do(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "hana@example.com"})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		})
	})

	Describe("leave lifecycle", func() {
		var (
			aliID        int64
			aliToken     string
			managerToken string
		)

		BeforeEach(func() {
			aliID, aliToken = hire("Ali", "ali@example.com", "employee", engineering, "2019-01-01")
			_, managerToken = hire("Mira", "mira@example.com", "manager", engineering, "2020-01-01")
		})

		It("creates, approves and accounts a request", func() {
			w := client.do(http.MethodPost, "/leaves", aliToken, map[string]string{
				"startDate": "2024-06-10", "endDate": "2024-06-12", "reason": "family trip",
			})
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			created := decode[leave.LeaveResponse](w)
			Expect(created.Status).To(Equal(leave.StatusPending))
			Expect(created.Duration).To(Equal(3))

			w = client.do(http.MethodGet, "/leaves/mine", aliToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			mine := decode[leave.MyLeavesResponse](w)
			Expect(mine.TotalDays).To(Equal(28))
			Expect(mine.UsedDays).To(BeZero())

			w = client.do(http.MethodGet, "/manager/leaves?status=PENDING", managerToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			scoped := decode[leave.ScopedLeavesResponse](w)
			Expect(scoped.Leaves).To(HaveLen(1))
			Expect(scoped.Leaves[0].Employee.ID).To(Equal(aliID))

			path := fmt.Sprintf("/manager/leaves/%d/approve", created.ID)
			w = client.do(http.MethodPost, path, managerToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			Expect(decode[leave.LeaveResponse](w).Status).To(Equal(leave.StatusApproved))

			w = client.do(http.MethodPost, path, managerToken, nil)
			Expect(w.Code).To(Equal(http.StatusConflict))

			w = client.do(http.MethodGet, "/leaves/mine", aliToken, nil)
			mine = decode[leave.MyLeavesResponse](w)
			Expect(mine.UsedDays).To(Equal(3))
			Expect(mine.RemainingDays).To(Equal(25))
			Expect(mine.Leaves[0].DisplayStatus).To(Equal("Approved"))

			w = client.do(http.MethodGet, fmt.Sprintf("/hr/employees/%d/leave-status", aliID), hrToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode[leave.EmployeeLeaveStatusResponse](w).RemainingDays).To(Equal(25))
		})

		It("rejects an inverted date range without storing anything", func() {
			w := client.do(http.MethodPost, "/leaves", aliToken, map[string]string{
				"startDate": "2024-06-12", "endDate": "2024-06-10", "reason": "oops",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			w = client.do(http.MethodGet, "/leaves/mine", aliToken, nil)
			Expect(decode[leave.MyLeavesResponse](w).Leaves).To(BeEmpty())
		})

		It("rejects with an optional comment", func() {
			w := client.do(http.MethodPost, "/leaves", aliToken, map[string]string{
				"startDate": "2024-07-01", "endDate": "2024-07-01", "reason": "errand",
			})
			created := decode[leave.LeaveResponse](w)

			w = client.do(http.MethodPost, fmt.Sprintf("/manager/leaves/%d/reject", created.ID), managerToken,
				map[string]string{"comment": "release week"})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			rejected := decode[leave.LeaveResponse](w)
			Expect(rejected.Status).To(Equal(leave.StatusRejected))
			Expect(rejected.Comment).To(Equal("release week"))
		})

		It("rejects with a chunked empty body", func() {
			w := client.do(http.MethodPost, "/leaves", aliToken, map[string]string{
				"startDate": "2024-07-02", "endDate": "2024-07-02", "reason": "errand",
			})
			created := decode[leave.LeaveResponse](w)

			req := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/v1/manager/leaves/%d/reject", created.ID), bytes.NewReader(nil))
			req.ContentLength = -1
			req.TransferEncoding = []string{"chunked"}
			req.Header.Set("Authorization", "Bearer "+managerToken)
			w = httptest.NewRecorder()
			client.handler.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			rejected := decode[leave.LeaveResponse](w)
			Expect(rejected.Status).To(Equal(leave.StatusRejected))
			Expect(rejected.Comment).To(BeEmpty())
		})

		It("keeps a manager inside their own department", func() {
			_, salesManagerToken := hire("Sam", "sam@example.com", "manager", sales, "2020-01-01")
			w := client.do(http.MethodPost, "/leaves", aliToken, map[string]string{
				"startDate": "2024-06-10", "endDate": "2024-06-10", "reason": "dentist",
			})
			created := decode[leave.LeaveResponse](w)

			w = client.do(http.MethodPost, fmt.Sprintf("/manager/leaves/%d/approve", created.ID), salesManagerToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))

			w = client.do(http.MethodGet, "/manager/leaves", salesManagerToken, nil)
			Expect(decode[leave.ScopedLeavesResponse](w).Leaves).To(BeEmpty())
		})

		It("forbids employees from manager and HR routes", func() {
			Expect(client.do(http.MethodGet, "/manager/leaves", aliToken, nil).Code).To(Equal(http.StatusForbidden))
			Expect(client.do(http.MethodPost, "/manager/leaves/1/approve", aliToken, nil).Code).To(Equal(http.StatusForbidden))
			Expect(client.do(http.MethodGet, "/hr/statistics", aliToken, nil).Code).To(Equal(http.StatusForbidden))
			Expect(client.do(http.MethodGet, "/hr/employees", managerToken, nil).Code).To(Equal(http.StatusForbidden))
		})

		It("returns 404 for an unknown request", func() {
			w := client.do(http.MethodPost, "/manager/leaves/9999/approve", managerToken, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("HR administration", func() {
		It("updates hire dates and recomputes on demand", func() {
			id, _ := hire("Ali", "ali@example.com", "employee", engineering, "2024-01-01")

			w := client.do(http.MethodPut, fmt.Sprintf("/hr/employees/%d/hire-date", id), hrToken, map[string]string{"hireDate": "2018-03-01"})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			Expect(decode[employee.EmployeeResponse](w).AnnualLeaveDays).To(Equal(28))

			w = client.do(http.MethodPost, "/hr/entitlements/recompute", hrToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			res := decode[entitlement.Result](w)
			Expect(res.Scanned).To(Equal(2))
			Expect(res.Updated).To(BeZero())
		})

		It("changes role and department", func() {
			id, _ := hire("Ali", "ali@example.com", "employee", engineering, "2024-01-01")

			w := client.do(http.MethodPut, fmt.Sprintf("/hr/employees/%d/role", id), hrToken, map[string]string{"role": "manager"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode[employee.EmployeeResponse](w).Role).To(Equal(identity.RoleManager))

			w = client.do(http.MethodPut, fmt.Sprintf("/hr/employees/%d/department", id), hrToken, map[string]interface{}{"departmentId": nil})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode[employee.EmployeeResponse](w).DepartmentID).To(BeNil())
		})

		It("deletes an employee but never the caller", func() {
			id, _ := hire("Ali", "ali@example.com", "employee", engineering, "2024-01-01")

			Expect(client.do(http.MethodDelete, fmt.Sprintf("/hr/employees/%d", id), hrToken, nil).Code).To(Equal(http.StatusNoContent))
			Expect(client.do(http.MethodDelete, fmt.Sprintf("/hr/employees/%d", id), hrToken, nil).Code).To(Equal(http.StatusNotFound))

			w := client.do(http.MethodGet, "/me", hrToken, nil)
			me := decode[employee.EmployeeResponse](w)
			w = client.do(http.MethodDelete, fmt.Sprintf("/hr/employees/%d", me.ID), hrToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(w)).NotTo(BeEmpty())
		})

		It("reports statistics", func() {
			hire("Ali", "ali@example.com", "employee", engineering, "2024-01-01")

			w := client.do(http.MethodGet, "/hr/statistics", hrToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			s := decode[stats.Statistics](w)
			Expect(s.TotalUsers).To(Equal(2))
			Expect(s.TotalHR).To(Equal(1))
			Expect(s.ApprovalRate).To(BeZero())
		})

		It("creates departments", func() {
			w := client.do(http.MethodPost, "/hr/departments", hrToken, map[string]string{"name": "Finance"})
			Expect(w.Code).To(Equal(http.StatusCreated))

			w = client.do(http.MethodGet, "/departments", hrToken, nil)
			Expect(decode[department.DepartmentsResponse](w).Departments).To(HaveLen(4))
		})
	})

	It("documents every mounted API route", func() {
		doc, err := swagger.LoadSpec(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		var undocumented []string
		walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, "/api/v1") {
				return nil
			}
			path := strings.TrimSuffix(strings.TrimPrefix(route, "/api/v1"), "/")
			if !doc.HasOperation(method, path) {
				undocumented = append(undocumented, method+" "+path)
			}
			return nil
		}
		Expect(chi.Walk(router, walk)).To(Succeed())
		Expect(undocumented).To(BeEmpty())
	})
})
