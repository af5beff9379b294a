package stats_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/stats"
	applogger "github.com/frahmantamala/leaveflow/pkg/logger"
)

type fakeStore struct {
	roles, usersPerDept, statuses, leavesPerDept []stats.GroupCount
	err                                          error
}

func (f *fakeStore) CountEmployeesByRole(context.Context) ([]stats.GroupCount, error) {
	return f.roles, f.err
}

func (f *fakeStore) CountEmployeesByDepartment(context.Context) ([]stats.GroupCount, error) {
	return f.usersPerDept, f.err
}

func (f *fakeStore) CountLeavesByStatus(context.Context) ([]stats.GroupCount, error) {
	return f.statuses, f.err
}

func (f *fakeStore) CountLeavesByDepartment(context.Context) ([]stats.GroupCount, error) {
	return f.leavesPerDept, f.err
}

var _ = Describe("Statistics", func() {
	hr := identity.Principal{EmployeeID: 1, Role: identity.RoleHR}

	DescribeTable("ApprovalRate",
		func(approved, total, expected int) {
			Expect(stats.ApprovalRate(approved, total)).To(Equal(expected))
		},
		Entry("no leaves", 0, 0, 0),
		Entry("all approved", 4, 4, 100),
		Entry("one in three", 1, 3, 33),
		Entry("two in three rounds up", 2, 3, 67),
		Entry("half rounds up", 1, 8, 13),
	)

	It("folds the group counts into the dashboard", func() {
		store := &fakeStore{
			roles:         []stats.GroupCount{{Key: "employee", Count: 5}, {Key: "hr", Count: 1}, {Key: "manager", Count: 2}},
			usersPerDept:  []stats.GroupCount{{Key: "Engineering", Count: 6}, {Key: "", Count: 2}},
			statuses:      []stats.GroupCount{{Key: "APPROVED", Count: 3}, {Key: "PENDING", Count: 2}, {Key: "REJECTED", Count: 1}},
			leavesPerDept: []stats.GroupCount{{Key: "Engineering", Count: 6}},
		}
		service := stats.NewService(store, applogger.Discard())

		out, err := service.Overview(context.Background(), hr)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.TotalUsers).To(Equal(8))
		Expect(out.TotalEmployees).To(Equal(5))
		Expect(out.TotalManagers).To(Equal(2))
		Expect(out.TotalHR).To(Equal(1))
		Expect(out.TotalLeaves).To(Equal(6))
		Expect(out.ApprovalRate).To(Equal(50))
		Expect(out.UsersPerDepartment).To(Equal([]stats.DepartmentCount{
			{Department: "Engineering", Count: 6},
			{Department: "No department", Count: 2},
		}))
	})

	It("is HR only", func() {
		service := stats.NewService(&fakeStore{}, applogger.Discard())
		_, err := service.Overview(context.Background(), identity.Principal{EmployeeID: 2, Role: identity.RoleManager})
		Expect(err).To(MatchError(internal.ErrInsufficientRole))
	})

	It("hides store failures behind an internal error", func() {
		service := stats.NewService(&fakeStore{err: errors.New("boom")}, applogger.Discard())
		_, err := service.Overview(context.Background(), hr)
		Expect(internal.TypeOf(err)).To(Equal(internal.ErrorTypeInternal))
	})
})
