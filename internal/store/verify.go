package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"github.com/dbsmedya/movenrich/internal/sqlutil"
	"github.com/dbsmedya/movenrich/internal/types"
)

// VerificationMethod defines how stored rows are checked against the run output.
type VerificationMethod string

const (
	// MethodCount compares row counts (fast)
	MethodCount VerificationMethod = "count"
	// MethodSHA256 hashes every stored row in insertion order
	MethodSHA256 VerificationMethod = "sha256"
	// MethodSkip skips verification entirely
	MethodSkip VerificationMethod = "skip"
)

// ErrVerifyMismatch is returned when stored rows differ from the run output.
var ErrVerifyMismatch = errors.New("stored rows do not match run output")

// VerifyResult holds the outcome of a verification.
type VerifyResult struct {
	RunID         string
	Method        VerificationMethod
	ExpectedCount int64
	StoredCount   int64
	ExpectedHash  string
	StoredHash    string
	Match         bool
	ErrorMessage  string
}

// Verify checks the rows stored for runID against records using the
// configured method. A mismatch returns the result and ErrVerifyMismatch.
func (s *Store) Verify(ctx context.Context, runID string, records []types.EnrichedRecord) (*VerifyResult, error) {
	return s.VerifyWith(ctx, s.verify, runID, records)
}

// VerifyWith is Verify with an explicit method.
func (s *Store) VerifyWith(ctx context.Context, method VerificationMethod, runID string, records []types.EnrichedRecord) (*VerifyResult, error) {
	var (
		result *VerifyResult
		err    error
	)

	switch method {
	case MethodSkip:
		s.logger.Info("Verification SKIPPED (method=skip)")
		return &VerifyResult{RunID: runID, Method: MethodSkip, Match: true}, nil
	case MethodCount, "":
		result, err = s.verifyByCount(ctx, runID, records)
	case MethodSHA256:
		result, err = s.verifyBySHA256(ctx, runID, records)
	default:
		return nil, fmt.Errorf("unknown verification method: %s", method)
	}
	if err != nil {
		return nil, fmt.Errorf("verification failed for run %s: %w", runID, err)
	}

	if !result.Match {
		s.logger.Errorf("Verification FAILED for run %s: %s", runID, result.ErrorMessage)
		return result, fmt.Errorf("%w: %s", ErrVerifyMismatch, result.ErrorMessage)
	}
	s.logger.Infof("Verification PASSED for run %s (%s, %d rows)", runID, result.Method, result.StoredCount)
	return result, nil
}

func (s *Store) verifyByCount(ctx context.Context, runID string, records []types.EnrichedRecord) (*VerifyResult, error) {
	stored, err := s.Count(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		RunID:         runID,
		Method:        MethodCount,
		ExpectedCount: int64(len(records)),
		StoredCount:   stored,
		Match:         stored == int64(len(records)),
	}
	if !result.Match {
		result.ErrorMessage = fmt.Sprintf("count mismatch: expected=%d, stored=%d", result.ExpectedCount, stored)
	}
	return result, nil
}

func (s *Store) verifyBySHA256(ctx context.Context, runID string, records []types.EnrichedRecord) (*VerifyResult, error) {
	expected := sha256.New()
	for i := range records {
		writeRow(expected, recordValues(runID, &records[i])[1:])
	}

	storedHash, storedCount, err := s.computeRunHash(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stored hash: %w", err)
	}

	result := &VerifyResult{
		RunID:         runID,
		Method:        MethodSHA256,
		ExpectedCount: int64(len(records)),
		StoredCount:   storedCount,
		ExpectedHash:  hex.EncodeToString(expected.Sum(nil)),
		StoredHash:    storedHash,
	}
	result.Match = result.ExpectedCount == storedCount && result.ExpectedHash == storedHash

	if !result.Match {
		if result.ExpectedCount != storedCount {
			result.ErrorMessage = fmt.Sprintf("count mismatch: expected=%d, stored=%d", result.ExpectedCount, storedCount)
		} else {
			result.ErrorMessage = fmt.Sprintf("hash mismatch: expected=%s, stored=%s", result.ExpectedHash[:16], storedHash[:16])
		}
	}
	return result, nil
}

// computeRunHash hashes every row stored for runID, ordered by insertion.
func (s *Store) computeRunHash(ctx context.Context, runID string) (string, int64, error) {
	columns := recordColumns[1:]
	query := sqlutil.SelectStatement(s.table, columns,
		sqlutil.QuoteIdentifier("run_id")+" = ?", sqlutil.QuoteIdentifier("id"))

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return "", 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	hasher := sha256.New()
	var total int64

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return "", 0, fmt.Errorf("hash computation interrupted: %w", err)
		}

		var (
			processID, activity, document, complement string
			startRaw, endRaw, phase, group            string
			movementType, movementDetail, complexity  string
			movementID                                sql.NullInt64
			duration                                  sql.NullFloat64
			line                                      int64
		)
		if err := rows.Scan(&processID, &movementID, &activity, &document, &complement,
			&startRaw, &endRaw, &phase, &group, &duration,
			&movementType, &movementDetail, &complexity, &line); err != nil {
			return "", 0, fmt.Errorf("failed to scan row: %w", err)
		}

		values := []interface{}{
			processID, nullInt(movementID), activity, document, complement,
			startRaw, endRaw, phase, group, nullFloat(duration),
			movementType, movementDetail, complexity, line,
		}
		writeRow(hasher, values)
		total++
	}
	if err := rows.Err(); err != nil {
		return "", 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), total, nil
}

func nullInt(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

func nullFloat(v sql.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func writeRow(h hash.Hash, values []interface{}) {
	h.Write([]byte(serializeRow(recordColumns[1:], values)))
	h.Write([]byte("\n"))
}

// serializeRow converts a row to a deterministic string representation for hashing.
// Format: col1=val1\x00col2=val2...
func serializeRow(columns []string, values []interface{}) string {
	parts := make([]string, len(columns))

	for i, col := range columns {
		var valStr string

		switch v := values[i].(type) {
		case nil:
			valStr = "NULL"
		case []byte:
			valStr = string(v)
		case int64:
			valStr = strconv.FormatInt(v, 10)
		case float64:
			valStr = strconv.FormatFloat(v, 'g', -1, 64)
		case string:
			valStr = v
		default:
			valStr = fmt.Sprintf("%v", v)
		}

		parts[i] = col + "=" + valStr
	}

	// Null byte separator avoids ambiguity with values containing commas
	return strings.Join(parts, "\x00")
}
