package maintenance

import (
	"context"
	"math/rand"
	"sort"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/id"
	"clinicore/internal/core/tenant"
	"clinicore/internal/core/tx"
	"clinicore/internal/domain/records"
	"clinicore/pkg/logger"
)

// CascadeEngine removes visit trees: the visits themselves, their bills,
// the payments against those bills, and any patient left with no visits
// and no admissions afterwards. Lab orders and admissions are reachable
// only through the patient and survive unless the patient goes.
type CascadeEngine struct {
	patients   records.PatientRepo
	visits     records.VisitRepo
	bills      records.BillRepo
	payments   records.PaymentRepo
	admissions records.AdmissionRepo
	journal    Journal
	txManager  tx.Manager
	log        *logger.Logger

	// drawKeep picks the per-day keep-count for thinning; replaced in tests.
	drawKeep func(min, max int) int
}

func NewCascadeEngine(
	patients records.PatientRepo,
	visits records.VisitRepo,
	bills records.BillRepo,
	payments records.PaymentRepo,
	admissions records.AdmissionRepo,
	journal Journal,
	txManager tx.Manager,
	log *logger.Logger,
) *CascadeEngine {
	return &CascadeEngine{
		patients:   patients,
		visits:     visits,
		bills:      bills,
		payments:   payments,
		admissions: admissions,
		journal:    journal,
		txManager:  txManager,
		log:        log,
		drawKeep: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
	}
}

// DeleteByRange cascade-deletes every visit booked within the criteria
// range (after the optional filter) in one transaction. An empty match
// is a successful no-op with a zero summary.
func (e *CascadeEngine) DeleteByRange(ctx context.Context, c PurgeCriteria) (DeleteSummary, error) {
	var summary DeleteSummary

	if err := c.Validate(); err != nil {
		return summary, err
	}
	filter, err := compileOptionalFilter(c.Filter)
	if err != nil {
		return summary, err
	}

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.lockMaintenance(ctx); err != nil {
			return err
		}

		roots, err := e.visits.ListByDateRange(ctx, c.Start, c.End)
		if err != nil {
			return err
		}
		roots, err = applyFilter(filter, roots)
		if err != nil {
			return err
		}
		if len(roots) == 0 {
			return nil
		}

		summary, err = e.deleteCascade(ctx, roots)
		if err != nil {
			return err
		}

		return e.record(ctx, "cascade_delete", summary)
	})
	if err != nil {
		return DeleteSummary{}, apperror.NewTransactionAborted("cascade delete", err)
	}

	e.log.WithContext(ctx).Infow("cascade delete completed",
		"visits", summary.Visits,
		"bills", summary.Bills,
		"payments", summary.Payments,
		"patients", summary.Patients,
	)
	return summary, nil
}

// Thin deletes the per-day excess: for each booking day in the range a
// keep-count is drawn within [MinKeep, MaxKeep] and every visit beyond
// it, in day-serial order, is cascade-deleted. Days at or under their
// keep-count are untouched.
func (e *CascadeEngine) Thin(ctx context.Context, c ThinCriteria) (DeleteSummary, error) {
	var summary DeleteSummary

	if err := c.Validate(); err != nil {
		return summary, err
	}
	filter, err := compileOptionalFilter(c.Filter)
	if err != nil {
		return summary, err
	}

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.lockMaintenance(ctx); err != nil {
			return err
		}

		candidates, err := e.visits.ListByDateRange(ctx, c.Start, c.End)
		if err != nil {
			return err
		}
		candidates, err = applyFilter(filter, candidates)
		if err != nil {
			return err
		}

		doomed := e.selectExcess(candidates, c.MinKeep, c.MaxKeep)
		if len(doomed) == 0 {
			return nil
		}

		summary, err = e.deleteCascade(ctx, doomed)
		if err != nil {
			return err
		}

		return e.record(ctx, "thin", summary)
	})
	if err != nil {
		return DeleteSummary{}, apperror.NewTransactionAborted("thinning", err)
	}

	e.log.WithContext(ctx).Infow("thinning completed",
		"visits", summary.Visits,
		"patients", summary.Patients,
	)
	return summary, nil
}

// selectExcess groups visits by booking day and returns those past each
// day's drawn keep-count, keeping the lowest day serials.
func (e *CascadeEngine) selectExcess(visits []records.Visit, minKeep, maxKeep int) []records.Visit {
	byDay := make(map[string][]records.Visit)
	days := make([]string, 0)
	for _, v := range visits {
		day := v.BookingDate.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], v)
	}
	sort.Strings(days)

	var doomed []records.Visit
	for _, day := range days {
		group := byDay[day]
		sort.Slice(group, func(i, j int) bool {
			return group[i].DaySerial < group[j].DaySerial
		})
		keep := e.drawKeep(minKeep, maxKeep)
		if len(group) <= keep {
			continue
		}
		doomed = append(doomed, group[keep:]...)
	}
	return doomed
}

// deleteCascade removes the given visits bottom-up: payments, then
// bills, then the visits, then patients left without any visit or
// admission. Runs inside the caller's transaction.
func (e *CascadeEngine) deleteCascade(ctx context.Context, roots []records.Visit) (DeleteSummary, error) {
	var summary DeleteSummary

	visitIDs := make([]id.ID, 0, len(roots))
	patientSet := make(map[id.ID]struct{})
	for _, v := range roots {
		visitIDs = append(visitIDs, v.ID)
		patientSet[v.PatientID] = struct{}{}
	}

	billIDs, err := e.bills.ListIDsByVisitIDs(ctx, visitIDs)
	if err != nil {
		return summary, err
	}
	paymentIDs, err := e.payments.ListIDsByBillIDs(ctx, billIDs)
	if err != nil {
		return summary, err
	}

	deleted, err := e.payments.DeleteByIDs(ctx, paymentIDs)
	if err != nil {
		return summary, err
	}
	summary.Payments = int(deleted)

	deleted, err = e.bills.DeleteByIDs(ctx, billIDs)
	if err != nil {
		return summary, err
	}
	summary.Bills = int(deleted)

	deleted, err = e.visits.DeleteByIDs(ctx, visitIDs)
	if err != nil {
		return summary, err
	}
	summary.Visits = int(deleted)

	orphans, err := e.findOrphanPatients(ctx, patientSet)
	if err != nil {
		return summary, err
	}
	if len(orphans) > 0 {
		deleted, err = e.patients.DeleteByIDs(ctx, orphans)
		if err != nil {
			return summary, err
		}
		summary.Patients = int(deleted)
	}

	return summary, nil
}

// findOrphanPatients returns the touched patients that have zero
// remaining visits and zero admissions after the visit deletion.
func (e *CascadeEngine) findOrphanPatients(ctx context.Context, touched map[id.ID]struct{}) ([]id.ID, error) {
	if len(touched) == 0 {
		return nil, nil
	}
	patientIDs := make([]id.ID, 0, len(touched))
	for pid := range touched {
		patientIDs = append(patientIDs, pid)
	}

	visitCounts, err := e.visits.CountByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	admissionCounts, err := e.admissions.CountByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	var orphans []id.ID
	for _, pid := range patientIDs {
		if visitCounts[pid] == 0 && admissionCounts[pid] == 0 {
			orphans = append(orphans, pid)
		}
	}
	return orphans, nil
}

// lockMaintenance serializes bulk maintenance per tenant. Cascade
// deletion, thinning, and resequencing all contend on identifier-bearing
// rows, so one tenant runs at most one bulk operation at a time.
func (e *CascadeEngine) lockMaintenance(ctx context.Context) error {
	locker, ok := e.txManager.(tx.AdvisoryLocker)
	if !ok {
		return nil
	}
	return locker.AdvisoryXactLock(ctx, "maintenance:"+tenant.MustGetTenantID(ctx))
}

func (e *CascadeEngine) record(ctx context.Context, operation string, summary DeleteSummary) error {
	if e.journal == nil {
		return nil
	}
	return e.journal.Record(ctx, JournalEntry{
		Operation: operation,
		Summary: map[string]any{
			"visits":   summary.Visits,
			"bills":    summary.Bills,
			"payments": summary.Payments,
			"patients": summary.Patients,
		},
	})
}

func compileOptionalFilter(expr string) (*RootFilter, error) {
	if expr == "" {
		return nil, nil
	}
	return CompileRootFilter(expr)
}
