package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/movenrich/internal/sqlutil"
	"github.com/dbsmedya/movenrich/internal/types"
)

// WriteStats holds statistics about a Write call.
type WriteStats struct {
	RunID    string
	Rows     int64
	Batches  int
	Duration time.Duration
}

// Write inserts records tagged with runID, one transaction per batch.
// A failed batch is rolled back; batches committed before it stay. On MySQL
// the whole call holds an advisory lock on the table.
func (s *Store) Write(ctx context.Context, runID string, records []types.EnrichedRecord) (*WriteStats, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	start := time.Now()
	stats := &WriteStats{RunID: runID}
	if len(records) == 0 {
		return stats, nil
	}

	lock, err := s.acquireWriteLock(ctx)
	if err != nil {
		return stats, err
	}
	defer func() {
		if err := lock.release(context.Background()); err != nil {
			s.logger.Warnf("Failed to release write lock: %v", err)
		}
	}()

	for i := 0; i < len(records); i += s.batchSize {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("write interrupted: %w", err)
		}

		end := min(i+s.batchSize, len(records))
		n, err := s.writeBatch(ctx, runID, records[i:end])
		if err != nil {
			return stats, fmt.Errorf("batch %d (rows %d-%d): %w", stats.Batches+1, i, end-1, err)
		}
		stats.Rows += n
		stats.Batches++
		s.logger.Debugf("Committed batch %d: %d rows", stats.Batches, n)
	}

	stats.Duration = time.Since(start)
	s.logger.Infof("Stored %d rows in %d batches (run %s)", stats.Rows, stats.Batches, runID)
	return stats, nil
}

func (s *Store) writeBatch(ctx context.Context, runID string, batch []types.EnrichedRecord) (int64, error) {
	query := sqlutil.InsertStatement(s.table, recordColumns, len(batch))
	args := make([]interface{}, 0, len(batch)*len(recordColumns))
	for i := range batch {
		args = append(args, recordValues(runID, &batch[i])...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected != int64(len(batch)) {
		return 0, fmt.Errorf("expected %d rows inserted, got %d", len(batch), affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return affected, nil
}

// recordValues returns the column values for rec in recordColumns order.
func recordValues(runID string, rec *types.EnrichedRecord) []interface{} {
	var movementID interface{}
	if rec.MovementIDValid {
		movementID = rec.MovementID
	}
	var duration interface{}
	if rec.Duration != nil {
		duration = *rec.Duration
	}

	return []interface{}{
		runID,
		rec.ProcessID,
		movementID,
		rec.Activity,
		rec.DocumentText(),
		rec.ComplementText(),
		rec.StartRaw,
		rec.EndRaw,
		rec.Phase,
		rec.ActivityGroup,
		duration,
		rec.MovementType,
		rec.MovementDetail,
		string(rec.Complexity),
		int64(rec.Line),
	}
}

// Count returns the number of rows stored for runID.
func (s *Store) Count(ctx context.Context, runID string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?",
		sqlutil.QuoteIdentifier(s.table), sqlutil.QuoteIdentifier("run_id"))

	var count int64
	if err := s.db.QueryRowContext(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows for run %s: %w", runID, err)
	}
	return count, nil
}
