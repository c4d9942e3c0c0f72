package maintenance

import (
	"context"
	"sort"
	"time"

	"clinicore/internal/core/id"
	"clinicore/internal/core/sequence"
	"clinicore/internal/domain/records"
)

// memDB is shared in-memory state for the fake repositories.
type memDB struct {
	patients   map[id.ID]records.Patient
	visits     map[id.ID]records.Visit
	bills      map[id.ID]records.Bill
	payments   map[id.ID]records.Payment
	admissions map[id.ID]records.Admission
}

func newMemDB() *memDB {
	return &memDB{
		patients:   make(map[id.ID]records.Patient),
		visits:     make(map[id.ID]records.Visit),
		bills:      make(map[id.ID]records.Bill),
		payments:   make(map[id.ID]records.Payment),
		admissions: make(map[id.ID]records.Admission),
	}
}

func (db *memDB) addPatient(p records.Patient) records.Patient {
	if p.ID == id.Nil() {
		p.ID = id.New()
	}
	db.patients[p.ID] = p
	return p
}

func (db *memDB) addVisit(v records.Visit) records.Visit {
	if v.ID == id.Nil() {
		v.ID = id.New()
	}
	db.visits[v.ID] = v
	return v
}

func (db *memDB) addBill(b records.Bill) records.Bill {
	if b.ID == id.Nil() {
		b.ID = id.New()
	}
	db.bills[b.ID] = b
	return b
}

func (db *memDB) addPayment(p records.Payment) records.Payment {
	if p.ID == id.Nil() {
		p.ID = id.New()
	}
	db.payments[p.ID] = p
	return p
}

func (db *memDB) addAdmission(a records.Admission) records.Admission {
	if a.ID == id.Nil() {
		a.ID = id.New()
	}
	db.admissions[a.ID] = a
	return a
}

// --- fake repositories ---

type fakePatients struct{ db *memDB }

func (f *fakePatients) Create(ctx context.Context, p *records.Patient) error {
	f.db.patients[p.ID] = *p
	return nil
}

func (f *fakePatients) GetByID(ctx context.Context, patientID id.ID) (*records.Patient, error) {
	p, ok := f.db.patients[patientID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePatients) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	for _, pid := range ids {
		if _, ok := f.db.patients[pid]; ok {
			delete(f.db.patients, pid)
			n++
		}
	}
	return n, nil
}

type fakeVisits struct{ db *memDB }

func (f *fakeVisits) Create(ctx context.Context, v *records.Visit) error {
	f.db.visits[v.ID] = *v
	return nil
}

func (f *fakeVisits) ListByDateRange(ctx context.Context, start, end time.Time) ([]records.Visit, error) {
	var out []records.Visit
	for _, v := range f.db.visits {
		if v.BookingDate.Before(start) || v.BookingDate.After(end) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate)
		}
		return out[i].DaySerial < out[j].DaySerial
	})
	return out, nil
}

func (f *fakeVisits) NextDaySerial(ctx context.Context, bookingDate time.Time) (int, error) {
	max := 0
	for _, v := range f.db.visits {
		if v.BookingDate.Equal(bookingDate) && v.DaySerial > max {
			max = v.DaySerial
		}
	}
	return max + 1, nil
}

func (f *fakeVisits) AttachBill(ctx context.Context, visitID, billID id.ID) error {
	v := f.db.visits[visitID]
	v.BillID = &billID
	f.db.visits[visitID] = v
	return nil
}

func (f *fakeVisits) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	for _, vid := range ids {
		if _, ok := f.db.visits[vid]; ok {
			delete(f.db.visits, vid)
			n++
		}
	}
	return n, nil
}

func (f *fakeVisits) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	counts := make(map[id.ID]int)
	want := make(map[id.ID]bool, len(patientIDs))
	for _, pid := range patientIDs {
		want[pid] = true
	}
	for _, v := range f.db.visits {
		if want[v.PatientID] {
			counts[v.PatientID]++
		}
	}
	return counts, nil
}

type fakeBills struct{ db *memDB }

func (f *fakeBills) Create(ctx context.Context, b *records.Bill) error {
	f.db.bills[b.ID] = *b
	return nil
}

func (f *fakeBills) GetByID(ctx context.Context, billID id.ID) (*records.Bill, error) {
	b, ok := f.db.bills[billID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBills) ListIDsByVisitIDs(ctx context.Context, visitIDs []id.ID) ([]id.ID, error) {
	want := make(map[id.ID]bool, len(visitIDs))
	for _, vid := range visitIDs {
		want[vid] = true
	}
	var out []id.ID
	for _, b := range f.db.bills {
		if b.VisitID != nil && want[*b.VisitID] {
			out = append(out, b.ID)
		}
	}
	return out, nil
}

func (f *fakeBills) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	for _, bid := range ids {
		if _, ok := f.db.bills[bid]; ok {
			delete(f.db.bills, bid)
			n++
		}
	}
	return n, nil
}

type fakePayments struct{ db *memDB }

func (f *fakePayments) Create(ctx context.Context, p *records.Payment) error {
	f.db.payments[p.ID] = *p
	return nil
}

func (f *fakePayments) ListIDsByBillIDs(ctx context.Context, billIDs []id.ID) ([]id.ID, error) {
	want := make(map[id.ID]bool, len(billIDs))
	for _, bid := range billIDs {
		want[bid] = true
	}
	var out []id.ID
	for _, p := range f.db.payments {
		if want[p.BillID] {
			out = append(out, p.ID)
		}
	}
	return out, nil
}

func (f *fakePayments) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	for _, pid := range ids {
		if _, ok := f.db.payments[pid]; ok {
			delete(f.db.payments, pid)
			n++
		}
	}
	return n, nil
}

type fakeAdmissions struct{ db *memDB }

func (f *fakeAdmissions) Create(ctx context.Context, a *records.Admission) error {
	f.db.admissions[a.ID] = *a
	return nil
}

func (f *fakeAdmissions) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	counts := make(map[id.ID]int)
	want := make(map[id.ID]bool, len(patientIDs))
	for _, pid := range patientIDs {
		want[pid] = true
	}
	for _, a := range f.db.admissions {
		if want[a.PatientID] {
			counts[a.PatientID]++
		}
	}
	return counts, nil
}

// fakeTxManager runs fn directly; Begins counts transaction starts.
type fakeTxManager struct {
	Begins int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.Begins++
	return fn(ctx)
}

// recordingJournal captures entries for assertions.
type recordingJournal struct {
	Entries []JournalEntry
}

func (j *recordingJournal) Record(ctx context.Context, entry JournalEntry) error {
	j.Entries = append(j.Entries, entry)
	return nil
}

// fakeIdentifierStore serves and mutates an ordered identifier list.
type fakeIdentifierStore struct {
	rows []records.IdentifierRow

	listErr        error
	renameCalls    int
	propagateCalls []records.Target
	propagated     map[records.Target]map[string]string
}

func (s *fakeIdentifierStore) ListIdentifiers(ctx context.Context, kind sequence.Kind, year int) ([]records.IdentifierRow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]records.IdentifierRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeIdentifierStore) RenamePrimary(ctx context.Context, kind sequence.Kind, renames map[string]string) (int64, error) {
	s.renameCalls++
	var n int64
	for i, row := range s.rows {
		if next, ok := renames[row.Identifier]; ok {
			s.rows[i].Identifier = next
			n++
		}
	}
	return n, nil
}

func (s *fakeIdentifierStore) Propagate(ctx context.Context, target records.Target, renames map[string]string) (int64, error) {
	s.propagateCalls = append(s.propagateCalls, target)
	if s.propagated == nil {
		s.propagated = make(map[records.Target]map[string]string)
	}
	cp := make(map[string]string, len(renames))
	for k, v := range renames {
		cp[k] = v
	}
	s.propagated[target] = cp
	return int64(len(renames)), nil
}
