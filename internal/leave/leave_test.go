package leave_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/leave"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Leave request", func() {
	decidedAt := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

	DescribeTable("DaySpan counts both ends",
		func(start, end time.Time, expected int) {
			Expect(leave.DaySpan(start, end)).To(Equal(expected))
		},
		Entry("single day", date(2024, 6, 10), date(2024, 6, 10), 1),
		Entry("three days", date(2024, 6, 10), date(2024, 6, 12), 3),
		Entry("across a month", date(2024, 1, 30), date(2024, 2, 2), 4),
		Entry("leap day included", date(2024, 2, 28), date(2024, 3, 1), 3),
		Entry("clock part ignored", time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 6, 11, 1, 0, 0, 0, time.UTC), 2),
	)

	Describe("transitions", func() {
		var request *leave.Request

		BeforeEach(func() {
			request = leave.NewRequest(7, date(2024, 6, 10), date(2024, 6, 12), "holiday")
		})

		It("starts pending with an empty comment", func() {
			Expect(request.Status).To(Equal(leave.StatusPending))
			Expect(request.Comment).To(BeEmpty())
			Expect(request.CanBeDecided()).To(BeTrue())
			Expect(request.Duration()).To(Equal(3))
		})

		It("records the approver on approval", func() {
			Expect(request.Approve(3, decidedAt)).To(Succeed())
			Expect(request.Status).To(Equal(leave.StatusApproved))
			Expect(*request.DecidedBy).To(Equal(int64(3)))
			Expect(*request.DecidedAt).To(Equal(decidedAt))
			Expect(request.Comment).To(BeEmpty())
		})

		It("stores the rejection comment verbatim", func() {
			Expect(request.Reject(3, "  Busy week ", decidedAt)).To(Succeed())
			Expect(request.Status).To(Equal(leave.StatusRejected))
			Expect(request.Comment).To(Equal("  Busy week "))
		})

		It("refuses a second decision", func() {
			Expect(request.Approve(3, decidedAt)).To(Succeed())
			Expect(request.Reject(3, "late", decidedAt)).To(MatchError(internal.ErrLeaveAlreadyDecided))
			Expect(request.Approve(3, decidedAt)).To(MatchError(internal.ErrLeaveAlreadyDecided))
			Expect(request.Status).To(Equal(leave.StatusApproved))
		})
	})

	Describe("Summarize", func() {
		It("counts approved days only and may go negative", func() {
			approved := leave.NewRequest(1, date(2024, 1, 1), date(2024, 1, 10), "a")
			Expect(approved.Approve(2, decidedAt)).To(Succeed())
			rejected := leave.NewRequest(1, date(2024, 2, 1), date(2024, 2, 5), "b")
			Expect(rejected.Reject(2, "", decidedAt)).To(Succeed())
			pending := leave.NewRequest(1, date(2024, 3, 1), date(2024, 3, 2), "c")

			summary := leave.Summarize([]*leave.Request{approved, rejected, pending}, 8)
			Expect(summary).To(Equal(leave.Summary{UsedDays: 10, RemainingDays: -2, TotalDays: 8}))
		})

		It("is all remaining with no requests", func() {
			Expect(leave.Summarize(nil, 14)).To(Equal(leave.Summary{UsedDays: 0, RemainingDays: 14, TotalDays: 14}))
		})
	})

	Describe("Status", func() {
		It("parses any casing", func() {
			st, ok := leave.ParseStatus("approved")
			Expect(ok).To(BeTrue())
			Expect(st).To(Equal(leave.StatusApproved))

			_, ok = leave.ParseStatus("cancelled")
			Expect(ok).To(BeFalse())
		})

		It("displays title cased", func() {
			Expect(leave.StatusApproved.Display()).To(Equal("Approved"))
			Expect(leave.StatusPending.Display()).To(Equal("Pending"))
		})
	})

	Describe("CreateLeaveDTO", func() {
		It("accepts a single-day request", func() {
			dto := leave.CreateLeaveDTO{StartDate: "2024-06-10", EndDate: "2024-06-10", Reason: "dentist"}
			start, end, err := dto.Validate()
			Expect(err).To(BeNil())
			Expect(start).To(Equal(end))
		})

		It("rejects an end before the start", func() {
			dto := leave.CreateLeaveDTO{StartDate: "2024-06-12", EndDate: "2024-06-10", Reason: "trip"}
			_, _, err := dto.Validate()
			Expect(err).To(MatchError(internal.ErrInvalidDateRange))
		})

		It("does not report a missing reason as an inverted range", func() {
			dto := leave.CreateLeaveDTO{StartDate: "2024-06-10", EndDate: "2024-06-12", Reason: ""}
			_, _, err := dto.Validate()
			Expect(err).NotTo(BeNil())
			Expect(errors.Is(err, internal.ErrInvalidDateRange)).To(BeFalse())
		})

		It("rejects missing and malformed fields", func() {
			dto := leave.CreateLeaveDTO{StartDate: "10/06/2024", EndDate: "", Reason: "  "}
			_, _, err := dto.Validate()
			Expect(err).NotTo(BeNil())
			Expect(internal.TypeOf(err)).To(Equal(internal.ErrorTypeValidation))
			details, ok := err.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(3))
		})
	})

	Describe("ParseScopeFilter", func() {
		It("accepts lower case status and a department id", func() {
			filter, err := leave.ParseScopeFilter("pending", "4")
			Expect(err).To(BeNil())
			Expect(*filter.Status).To(Equal(leave.StatusPending))
			Expect(*filter.DepartmentID).To(Equal(int64(4)))
		})

		It("rejects unknown values", func() {
			_, err := leave.ParseScopeFilter("maybe", "")
			Expect(err).NotTo(BeNil())
			_, err = leave.ParseScopeFilter("", "abc")
			Expect(err).NotTo(BeNil())
		})
	})
})
