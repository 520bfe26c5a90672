package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrLockTimeout is returned when another writer holds the table lock.
var ErrLockTimeout = errors.New("write lock acquisition timed out")

// lockTimeoutSeconds bounds how long Write waits behind another writer.
const lockTimeoutSeconds = 10

// LockName returns the advisory lock name guarding writes to table.
// MySQL limits lock names to 64 characters.
func LockName(table string) string {
	name := "movenrich:" + table
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// writeLock is a MySQL GET_LOCK held on a pinned connection. GET_LOCK is
// scoped to the session, so acquire and release must share one connection.
type writeLock struct {
	conn *sql.Conn
	name string
}

// acquireWriteLock serializes concurrent runs writing into the same MySQL
// table. SQLite already serializes writers, so it returns a nil lock.
func (s *Store) acquireWriteLock(ctx context.Context) (*writeLock, error) {
	if s.driver != DriverMySQL {
		return nil, nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve lock connection: %w", err)
	}

	name := LockName(s.table)
	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, lockTimeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	// NULL means the server failed to take the lock (out of memory, killed thread).
	if !result.Valid {
		conn.Close()
		return nil, fmt.Errorf("GET_LOCK returned NULL for lock %q", name)
	}
	if result.Int64 != 1 {
		conn.Close()
		return nil, fmt.Errorf("%w: lock %q is held by another writer", ErrLockTimeout, name)
	}

	s.logger.Debugf("Acquired write lock %q", name)
	return &writeLock{conn: conn, name: name}, nil
}

// release drops the lock and returns the connection to the pool. A nil lock
// is a no-op.
func (l *writeLock) release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	defer l.conn.Close()

	var result sql.NullInt64
	if err := l.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", l.name).Scan(&result); err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid || result.Int64 != 1 {
		return fmt.Errorf("lock %q was not held at release", l.name)
	}
	return nil
}
