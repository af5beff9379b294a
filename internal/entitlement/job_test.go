package entitlement_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal/entitlement"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

type fakeStore struct {
	employees map[int64]*entitlement.Snapshot
	order     []int64
	failFor   map[int64]bool
	listErr   error
	writes    int
}

func newFakeStore(snapshots ...entitlement.Snapshot) *fakeStore {
	s := &fakeStore{employees: map[int64]*entitlement.Snapshot{}, failFor: map[int64]bool{}}
	for i := range snapshots {
		snap := snapshots[i]
		s.employees[snap.EmployeeID] = &snap
		s.order = append(s.order, snap.EmployeeID)
	}
	return s
}

func (s *fakeStore) ListEntitlements(_ context.Context) ([]entitlement.Snapshot, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]entitlement.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.employees[id])
	}
	return out, nil
}

func (s *fakeStore) UpdateAnnualLeaveDays(_ context.Context, id int64, days int) error {
	if s.failFor[id] {
		return errors.New("connection reset")
	}
	s.writes++
	s.employees[id].AnnualLeaveDays = days
	return nil
}

var _ = Describe("Recompute job", func() {
	var (
		store *fakeStore
		job   *entitlement.Job
		now   time.Time
	)

	BeforeEach(func() {
		now = date(2024, 6, 1)
		store = newFakeStore(
			entitlement.Snapshot{EmployeeID: 1, HireDate: date(2019, 1, 1), AnnualLeaveDays: 14},
			entitlement.Snapshot{EmployeeID: 2, HireDate: date(2023, 1, 1), AnnualLeaveDays: 14},
			entitlement.Snapshot{EmployeeID: 3, HireDate: date(2010, 1, 1), AnnualLeaveDays: 28},
			entitlement.Snapshot{EmployeeID: 4, HireDate: date(2022, 1, 1), AnnualLeaveDays: 20},
		)
		job = entitlement.NewJob(store, func() time.Time { return now }, logger.Discard())
	})

	It("writes only the employees whose allowance changed", func() {
		res, err := job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(entitlement.Result{Scanned: 4, Updated: 2, Failed: 0}))
		Expect(store.employees[1].AnnualLeaveDays).To(Equal(28))
		Expect(store.employees[4].AnnualLeaveDays).To(Equal(14))
	})

	It("is idempotent", func() {
		_, err := job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		writes := store.writes

		res, err := job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Updated).To(BeZero())
		Expect(store.writes).To(Equal(writes))
	})

	It("keeps going when one employee fails", func() {
		store.failFor[1] = true

		res, err := job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Failed).To(Equal(1))
		Expect(res.Updated).To(Equal(1))
		Expect(store.employees[1].AnnualLeaveDays).To(Equal(14))
		Expect(store.employees[4].AnnualLeaveDays).To(Equal(14))
	})

	It("aborts when the employee list cannot be loaded", func() {
		store.listErr = errors.New("db down")
		_, err := job.Sweep(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("promotes an employee once their fifth anniversary passes", func() {
		now = date(2023, 12, 31)
		_, err := job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.employees[1].AnnualLeaveDays).To(Equal(14))

		now = date(2024, 1, 1)
		_, err = job.Sweep(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.employees[1].AnnualLeaveDays).To(Equal(28))
	})

	It("exposes itself as a named task", func() {
		Expect(job.Name()).To(Equal(entitlement.JobName))
		Expect(job.Run(context.Background())).To(Succeed())
	})
})
