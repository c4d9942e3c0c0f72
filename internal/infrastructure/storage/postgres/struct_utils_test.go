package postgres

import (
	"testing"
	"time"

	"clinicore/internal/core/id"
)

type testRecord struct {
	ID        id.ID     `db:"id"`
	TenantID  id.ID     `db:"tenant_id"`
	Number    string    `db:"number"`
	CreatedAt time.Time `db:"created_at"`
	Ignored   string    `db:"-"`
	NoTag     string
}

type testEmbedding struct {
	testRecord
	Extra string `db:"extra"`
}

func TestStructToMap(t *testing.T) {
	rec := testRecord{
		ID:       id.New(),
		TenantID: id.New(),
		Number:   "INV/24/1",
		Ignored:  "skip",
		NoTag:    "skip",
	}

	m := StructToMap(rec)

	if len(m) != 4 {
		t.Fatalf("expected 4 columns, got %d: %v", len(m), m)
	}
	if m["number"] != "INV/24/1" {
		t.Errorf("number = %v", m["number"])
	}
	if _, ok := m["-"]; ok {
		t.Error("ignored field leaked into map")
	}
}

func TestStructToMap_Embedded(t *testing.T) {
	rec := testEmbedding{
		testRecord: testRecord{Number: "U/24/7"},
		Extra:      "x",
	}

	m := StructToMap(&rec)

	if m["number"] != "U/24/7" {
		t.Errorf("embedded number = %v", m["number"])
	}
	if m["extra"] != "x" {
		t.Errorf("extra = %v", m["extra"])
	}
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testRecord]()

	want := []string{"id", "tenant_id", "number", "created_at"}
	if len(cols) != len(want) {
		t.Fatalf("expected %v, got %v", want, cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("col[%d] = %s, want %s", i, cols[i], want[i])
		}
	}
}
