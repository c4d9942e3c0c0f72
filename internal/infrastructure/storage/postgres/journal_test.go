package postgres

import (
	"encoding/json"
	"fmt"
	"testing"
)

func newTestJournal(t *testing.T) *JournalService {
	t.Helper()
	svc, err := NewJournalService(nil)
	if err != nil {
		t.Fatalf("NewJournalService: %v", err)
	}
	return svc
}

func TestPackRenameMapSmallStaysPlain(t *testing.T) {
	svc := newTestJournal(t)

	var row JournalRow
	err := svc.packRenameMap(map[string]string{"U/24/3": "U/24/2"}, &row)
	if err != nil {
		t.Fatalf("packRenameMap: %v", err)
	}

	if row.CompressionAlgo == CompressionZstd {
		t.Error("small payload should not be compressed")
	}
	if len(row.RenameMapCompressed) != 0 {
		t.Error("expected empty compressed payload")
	}

	var got map[string]string
	if err := json.Unmarshal(row.RenameMap, &got); err != nil {
		t.Fatalf("unmarshal rename map: %v", err)
	}
	if got["U/24/3"] != "U/24/2" {
		t.Errorf("rename map not preserved: %v", got)
	}
}

func TestPackRenameMapLargeRoundTrip(t *testing.T) {
	svc := newTestJournal(t)

	renames := make(map[string]string, 2000)
	for i := 0; i < 2000; i++ {
		renames[fmt.Sprintf("INV/2024/%d", i+1000)] = fmt.Sprintf("INV/2024/%d", i+1)
	}

	var row JournalRow
	if err := svc.packRenameMap(renames, &row); err != nil {
		t.Fatalf("packRenameMap: %v", err)
	}

	if row.CompressionAlgo != CompressionZstd {
		t.Fatalf("expected zstd compression, got %q", row.CompressionAlgo)
	}
	if len(row.RenameMap) != 0 {
		t.Error("compressed row should not carry the plain payload")
	}
	if len(row.RenameMapCompressed) == 0 {
		t.Fatal("expected compressed payload")
	}

	row.CompressionAlgo = CompressionZstd
	if err := svc.unpackRenameMap(&row); err != nil {
		t.Fatalf("unpackRenameMap: %v", err)
	}
	if len(row.RenameMapCompressed) != 0 {
		t.Error("compressed payload should be dropped after expansion")
	}

	var got map[string]string
	if err := json.Unmarshal(row.RenameMap, &got); err != nil {
		t.Fatalf("unmarshal expanded map: %v", err)
	}
	if len(got) != len(renames) {
		t.Fatalf("expected %d entries, got %d", len(renames), len(got))
	}
	if got["INV/2024/1000"] != "INV/2024/1" {
		t.Errorf("rename pair not preserved: %q", got["INV/2024/1000"])
	}
}

func TestPackRenameMapEmptyIsNoop(t *testing.T) {
	svc := newTestJournal(t)

	var row JournalRow
	if err := svc.packRenameMap(nil, &row); err != nil {
		t.Fatalf("packRenameMap: %v", err)
	}
	if row.RenameMap != nil || row.RenameMapCompressed != nil {
		t.Error("empty rename map should store nothing")
	}
}
