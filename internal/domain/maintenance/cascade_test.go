package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clinicore/internal/core/apperror"
	"clinicore/internal/domain/records"
	"clinicore/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func newCascadeEngine(db *memDB, journal Journal, txm *fakeTxManager) *CascadeEngine {
	return NewCascadeEngine(
		&fakePatients{db},
		&fakeVisits{db},
		&fakeBills{db},
		&fakePayments{db},
		&fakeAdmissions{db},
		journal,
		txm,
		logger.Nop(),
	)
}

func TestDeleteByRange_CascadesAndRemovesOrphanedPatient(t *testing.T) {
	db := newMemDB()

	// Patient A: one visit inside the range, one outside. Survives.
	pa := db.addPatient(records.Patient{RegistrationNumber: "U/24/1"})
	vaIn := db.addVisit(records.Visit{PatientID: pa.ID, BookingDate: day(10), DaySerial: 1})
	db.addVisit(records.Visit{PatientID: pa.ID, BookingDate: day(25), DaySerial: 1})

	// Patient B: single visit inside the range with bill and payment. Orphaned.
	pb := db.addPatient(records.Patient{RegistrationNumber: "U/24/2"})
	vb := db.addVisit(records.Visit{PatientID: pb.ID, BookingDate: day(11), DaySerial: 1})
	bill := db.addBill(records.Bill{VisitID: &vb.ID, BillNumber: "INV/24/1", PatientID: pb.ID})
	db.addPayment(records.Payment{BillID: bill.ID, PaymentNumber: "PAY/24/1", InvoiceNumber: bill.BillNumber})

	journal := &recordingJournal{}
	engine := newCascadeEngine(db, journal, &fakeTxManager{})

	summary, err := engine.DeleteByRange(context.Background(), PurgeCriteria{Start: day(1), End: day(15)})
	require.NoError(t, err)

	require.Equal(t, DeleteSummary{Visits: 2, Bills: 1, Payments: 1, Patients: 1}, summary)

	_, aliveA := db.patients[pa.ID]
	require.True(t, aliveA, "patient with a remaining visit must survive")
	_, aliveB := db.patients[pb.ID]
	require.False(t, aliveB, "patient with no remaining visits must be removed")

	_, visitGone := db.visits[vaIn.ID]
	require.False(t, visitGone)
	require.Empty(t, db.bills)
	require.Empty(t, db.payments)

	require.Len(t, journal.Entries, 1)
	require.Equal(t, "cascade_delete", journal.Entries[0].Operation)
}

func TestDeleteByRange_AdmissionKeepsPatient(t *testing.T) {
	db := newMemDB()

	p := db.addPatient(records.Patient{RegistrationNumber: "U/24/1"})
	db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(5), DaySerial: 1})
	db.addAdmission(records.Admission{PatientID: p.ID, BookingNumber: "ADM/24/1"})

	engine := newCascadeEngine(db, &recordingJournal{}, &fakeTxManager{})

	summary, err := engine.DeleteByRange(context.Background(), PurgeCriteria{Start: day(1), End: day(15)})
	require.NoError(t, err)

	require.Equal(t, 1, summary.Visits)
	require.Equal(t, 0, summary.Patients)
	_, alive := db.patients[p.ID]
	require.True(t, alive, "admitted patient must survive visit deletion")
	require.Len(t, db.admissions, 1)
}

func TestDeleteByRange_EmptyMatchIsNoOp(t *testing.T) {
	db := newMemDB()
	p := db.addPatient(records.Patient{})
	db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(25), DaySerial: 1})

	journal := &recordingJournal{}
	engine := newCascadeEngine(db, journal, &fakeTxManager{})

	summary, err := engine.DeleteByRange(context.Background(), PurgeCriteria{Start: day(1), End: day(15)})
	require.NoError(t, err)
	require.Equal(t, DeleteSummary{}, summary)
	require.Empty(t, journal.Entries, "no-op must not be journaled")
	require.Len(t, db.visits, 1)
}

func TestDeleteByRange_InvalidRangeRejectedBeforeTransaction(t *testing.T) {
	txm := &fakeTxManager{}
	engine := newCascadeEngine(newMemDB(), &recordingJournal{}, txm)

	_, err := engine.DeleteByRange(context.Background(), PurgeCriteria{Start: day(15), End: day(1)})
	require.True(t, apperror.IsInvalidRange(err), "got %v", err)
	require.Zero(t, txm.Begins, "validation must happen before the transaction opens")
}

func TestDeleteByRange_FilterNarrowsRoots(t *testing.T) {
	db := newMemDB()
	p := db.addPatient(records.Patient{})
	opd := db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(5), DaySerial: 1, Department: "OPD"})
	er := db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(5), DaySerial: 2, Department: "ER"})

	engine := newCascadeEngine(db, &recordingJournal{}, &fakeTxManager{})

	summary, err := engine.DeleteByRange(context.Background(), PurgeCriteria{
		Start:  day(1),
		End:    day(15),
		Filter: `department == "ER"`,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Visits)

	_, opdAlive := db.visits[opd.ID]
	require.True(t, opdAlive)
	_, erAlive := db.visits[er.ID]
	require.False(t, erAlive)
}

func TestDeleteByRange_BadFilterRejectedBeforeTransaction(t *testing.T) {
	txm := &fakeTxManager{}
	engine := newCascadeEngine(newMemDB(), &recordingJournal{}, txm)

	_, err := engine.DeleteByRange(context.Background(), PurgeCriteria{
		Start:  day(1),
		End:    day(15),
		Filter: `day_serial + 1`,
	})
	require.Error(t, err)
	require.Zero(t, txm.Begins)
}

func TestThin_DeletesExcessKeepingLowestSerials(t *testing.T) {
	db := newMemDB()
	p := db.addPatient(records.Patient{})
	db.addAdmission(records.Admission{PatientID: p.ID})

	// Day 5: five visits. Day 6: two visits, under any keep-count in band.
	for serial := 1; serial <= 5; serial++ {
		db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(5), DaySerial: serial})
	}
	for serial := 1; serial <= 2; serial++ {
		db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(6), DaySerial: serial})
	}

	engine := newCascadeEngine(db, &recordingJournal{}, &fakeTxManager{})
	engine.drawKeep = func(min, max int) int {
		require.Equal(t, 3, min)
		require.Equal(t, 4, max)
		return 3
	}

	summary, err := engine.Thin(context.Background(), ThinCriteria{
		Start:   day(1),
		End:     day(15),
		MinKeep: 3,
		MaxKeep: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Visits)

	var kept []int
	for _, v := range db.visits {
		if v.BookingDate.Equal(day(5)) {
			kept = append(kept, v.DaySerial)
		}
	}
	require.ElementsMatch(t, []int{1, 2, 3}, kept, "lowest day serials must survive")

	var day6 int
	for _, v := range db.visits {
		if v.BookingDate.Equal(day(6)) {
			day6++
		}
	}
	require.Equal(t, 2, day6, "day under the keep-count must be untouched")
}

func TestThin_NothingOverKeepCountIsNoOp(t *testing.T) {
	db := newMemDB()
	p := db.addPatient(records.Patient{})
	db.addVisit(records.Visit{PatientID: p.ID, BookingDate: day(5), DaySerial: 1})

	journal := &recordingJournal{}
	engine := newCascadeEngine(db, journal, &fakeTxManager{})
	engine.drawKeep = func(min, max int) int { return min }

	summary, err := engine.Thin(context.Background(), ThinCriteria{
		Start:   day(1),
		End:     day(15),
		MinKeep: 1,
		MaxKeep: 3,
	})
	require.NoError(t, err)
	require.Equal(t, DeleteSummary{}, summary)
	require.Empty(t, journal.Entries)
	require.Len(t, db.visits, 1)
}

func TestThin_InvalidBandRejected(t *testing.T) {
	engine := newCascadeEngine(newMemDB(), &recordingJournal{}, &fakeTxManager{})

	_, err := engine.Thin(context.Background(), ThinCriteria{
		Start: day(1), End: day(15), MinKeep: 0, MaxKeep: 3,
	})
	require.True(t, apperror.IsInvalidRange(err))

	_, err = engine.Thin(context.Background(), ThinCriteria{
		Start: day(1), End: day(15), MinKeep: 4, MaxKeep: 3,
	})
	require.True(t, apperror.IsInvalidRange(err))
}
