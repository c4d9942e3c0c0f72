package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"clinicore/internal/core/id"
	"clinicore/internal/core/tenant"
	"clinicore/internal/domain/maintenance"
)

// CompressionAlgo specifies the compression applied to a journal payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// JournalRow is one stored maintenance operation.
// Resequencing rename maps grow with the year's record count, so large
// payloads are stored zstd-compressed.
type JournalRow struct {
	ID                  id.ID           `db:"id"`
	TenantID            string          `db:"tenant_id"`
	Operation           string          `db:"operation"`
	Kind                string          `db:"kind"`
	Year                int             `db:"year"`
	Summary             json.RawMessage `db:"summary"`
	RenameMap           json.RawMessage `db:"rename_map"`
	RenameMapCompressed []byte          `db:"rename_map_compressed"`
	CompressionAlgo     CompressionAlgo `db:"compression_algo"`
	CreatedAt           time.Time       `db:"created_at"`
}

// JournalService persists maintenance journal entries.
// Record runs on the caller's querier, so an entry written inside a
// maintenance transaction disappears with it on rollback.
type JournalService struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder

	compressThreshold int
}

var _ maintenance.Journal = (*JournalService)(nil)

// NewJournalService creates a journal backed by the maintenance_journal table.
func NewJournalService(txManager *TxManager) (*JournalService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &JournalService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements maintenance.Journal.
func (s *JournalService) Record(ctx context.Context, entry maintenance.JournalEntry) error {
	row := JournalRow{
		ID:              id.New(),
		TenantID:        tenant.MustGetTenantID(ctx),
		Operation:       entry.Operation,
		Kind:            string(entry.Kind),
		Year:            entry.Year,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if entry.Summary != nil {
		summaryJSON, err := json.Marshal(entry.Summary)
		if err != nil {
			return fmt.Errorf("marshal journal summary: %w", err)
		}
		row.Summary = summaryJSON
	}

	if err := s.packRenameMap(entry.RenameMap, &row); err != nil {
		return err
	}

	sql := `
		INSERT INTO maintenance_journal (
			id, tenant_id, operation, kind, year,
			summary, rename_map, rename_map_compressed, compression_algo,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql,
		row.ID, row.TenantID, row.Operation, row.Kind, row.Year,
		row.Summary, row.RenameMap, row.RenameMapCompressed, row.CompressionAlgo,
		row.CreatedAt,
	)
	return err
}

// GetRecent returns the tenant's latest journal entries, newest first,
// with compressed rename maps expanded.
func (s *JournalService) GetRecent(ctx context.Context, limit int) ([]JournalRow, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := `
		SELECT id, tenant_id, operation, kind, year,
			   summary, rename_map, rename_map_compressed, compression_algo,
			   created_at
		FROM maintenance_journal
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, tenant.MustGetTenantID(ctx), limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalRow
	for rows.Next() {
		var e JournalRow
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.Operation, &e.Kind, &e.Year,
			&e.Summary, &e.RenameMap, &e.RenameMapCompressed, &e.CompressionAlgo,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}

		if err := s.unpackRenameMap(&e); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// packRenameMap stores the rename map on the row, zstd-compressed when
// the JSON payload exceeds the threshold.
func (s *JournalService) packRenameMap(renames map[string]string, row *JournalRow) error {
	if len(renames) == 0 {
		return nil
	}

	renameJSON, err := json.Marshal(renames)
	if err != nil {
		return fmt.Errorf("marshal rename map: %w", err)
	}
	if len(renameJSON) > s.compressThreshold {
		row.RenameMapCompressed = s.encoder.EncodeAll(renameJSON, nil)
		row.CompressionAlgo = CompressionZstd
	} else {
		row.RenameMap = renameJSON
	}
	return nil
}

// unpackRenameMap restores a compressed rename map to its JSON form.
func (s *JournalService) unpackRenameMap(e *JournalRow) error {
	if e.CompressionAlgo != CompressionZstd || len(e.RenameMapCompressed) == 0 {
		return nil
	}

	expanded, err := s.decoder.DecodeAll(e.RenameMapCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress rename map: %w", err)
	}
	e.RenameMap = expanded
	e.RenameMapCompressed = nil
	return nil
}
