package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/movenrich/internal/sqlutil"
)

// maxBindVars stays below SQLite's default SQLITE_MAX_VARIABLE_NUMBER.
const maxBindVars = 32000

// recordColumns are written for every record, in this order.
var recordColumns = []string{
	"run_id",
	"processo_id",
	"movimento_id",
	"activity",
	"documento",
	"complemento",
	"data_inicio",
	"data_final",
	"fase",
	"activity_group",
	"duration_calculated",
	"movement_type",
	"movement_detail",
	"complexity",
	"source_line",
}

func (s *Store) createTableSQL() string {
	table := sqlutil.QuoteIdentifier(s.table)
	col := sqlutil.QuoteIdentifier

	text, key, id := "TEXT", "VARCHAR(191)", "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverMySQL {
		id = "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}

	defs := []string{
		col("id") + " " + id,
		col("run_id") + " " + key + " NOT NULL",
		col("processo_id") + " " + key + " NOT NULL",
		col("movimento_id") + " BIGINT NULL",
		col("activity") + " " + text + " NOT NULL",
		col("documento") + " " + text + " NOT NULL",
		col("complemento") + " " + text + " NOT NULL",
		col("data_inicio") + " " + key + " NOT NULL",
		col("data_final") + " " + key + " NOT NULL",
		col("fase") + " " + key + " NOT NULL",
		col("activity_group") + " " + key + " NOT NULL",
		col("duration_calculated") + " DOUBLE NULL",
		col("movement_type") + " " + key + " NOT NULL",
		col("movement_detail") + " " + key + " NOT NULL",
		col("complexity") + " " + key + " NOT NULL",
		col("source_line") + " BIGINT NOT NULL",
	}
	if s.driver == DriverMySQL {
		defs = append(defs, "INDEX "+col("idx_"+s.table+"_run")+" ("+col("run_id")+")")
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", table, strings.Join(defs, ",\n  "))
	if s.driver == DriverMySQL {
		ddl += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return ddl
}

func (s *Store) createIndexSQL() string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		sqlutil.QuoteIdentifier("idx_"+s.table+"_run"),
		sqlutil.QuoteIdentifier(s.table),
		sqlutil.QuoteIdentifier("run_id"))
}

// EnsureSchema creates the records table and its run index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	// MySQL declares the index inline.
	if s.driver == DriverSQLite {
		if _, err := s.db.ExecContext(ctx, s.createIndexSQL()); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", s.table, err)
		}
	}
	s.logger.Debugf("Schema ready for table %q", s.table)
	return nil
}
