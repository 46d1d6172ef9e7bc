package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/clipsave"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ clipsave.HistoryService = (*HistoryService)(nil)

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryService implements clipsave.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// CreateRecord appends r to the log.
func (s *HistoryService) CreateRecord(ctx context.Context, r *clipsave.HistoryRecord, content string) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	r.ContentHash = hashContent(content)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_records (id, strategy, title, source_url, destination_path, succeeded,
			failure_kind, failure_reason, asset_count, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Strategy, r.Title, r.SourceURL, r.DestinationPath, r.Succeeded,
		string(r.FailureKind), r.FailureReason, r.AssetCount, r.ContentHash, r.CreatedAt.Format(timeFormat))

	return err
}

// FindRecords retrieves records matching the filter, newest first.
func (s *HistoryService) FindRecords(ctx context.Context, filter clipsave.HistoryFilter) ([]*clipsave.HistoryRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, strategy, title, source_url, destination_path, succeeded,
		failure_kind, failure_reason, asset_count, content_hash, created_at
		FROM history_records WHERE 1=1`)

	if filter.Strategy != nil {
		query.WriteString(" AND strategy = ?")
		args = append(args, *filter.Strategy)
	}
	if filter.Succeeded != nil {
		query.WriteString(" AND succeeded = ?")
		args = append(args, *filter.Succeeded)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")

	limit := filter.Limit
	if limit <= 0 && filter.Offset > 0 {
		// SQLite requires LIMIT before OFFSET.
		limit = -1
	}
	appendPagination(&query, &args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*clipsave.HistoryRecord
	for rows.Next() {
		var r clipsave.HistoryRecord
		var failureKind, createdAt string

		if err := rows.Scan(&r.ID, &r.Strategy, &r.Title, &r.SourceURL, &r.DestinationPath, &r.Succeeded,
			&failureKind, &r.FailureReason, &r.AssetCount, &r.ContentHash, &createdAt); err != nil {
			return nil, err
		}
		r.FailureKind = clipsave.FailureKind(failureKind)

		r.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		records = append(records, &r)
	}

	return records, rows.Err()
}
