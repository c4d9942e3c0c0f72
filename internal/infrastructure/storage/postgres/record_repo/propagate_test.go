package record_repo

import (
	"strings"
	"testing"

	"clinicore/internal/domain/records"
)

func TestRenamePairs_StableAndPaired(t *testing.T) {
	renames := map[string]string{
		"U/24/5": "U/24/2",
		"U/24/2": "U/24/1",
		"U/24/9": "U/24/3",
	}

	prev, next := renamePairs(renames)

	if len(prev) != 3 || len(next) != 3 {
		t.Fatalf("expected 3 pairs, got %d/%d", len(prev), len(next))
	}
	for i, old := range prev {
		if renames[old] != next[i] {
			t.Errorf("pair %d broken: %s -> %s, want %s", i, old, next[i], renames[old])
		}
		if i > 0 && prev[i-1] >= old {
			t.Errorf("prev not sorted at %d: %s >= %s", i, prev[i-1], old)
		}
	}
}

func TestRenameSQL_JoinsOnOldValue(t *testing.T) {
	sql := renameSQL(records.Target{Table: "bills", Column: "patient_registration_number"})

	for _, fragment := range []string{
		"UPDATE bills AS t",
		"SET patient_registration_number = v.next",
		"t.tenant_id = $1",
		"t.patient_registration_number = v.prev",
		"unnest($2::text[])",
		"unnest($3::text[])",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("rename SQL missing %q:\n%s", fragment, sql)
		}
	}
}

func TestIdentifierListSQL_OrdersByCreation(t *testing.T) {
	sql := identifierListSQL(records.Target{Table: "lab_orders", Column: "lab_number"})

	for _, fragment := range []string{
		"lab_number AS identifier",
		"FROM lab_orders",
		"tenant_id = $1",
		"EXTRACT(YEAR FROM created_at) = $2",
		"ORDER BY created_at ASC, id ASC",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("list SQL missing %q:\n%s", fragment, sql)
		}
	}
}
