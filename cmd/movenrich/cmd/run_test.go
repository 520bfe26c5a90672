package cmd

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wantHeader = "processoID,movimentoID,activity,documento,complemento,dataInicio,dataFinal," +
		"activity_group,duration_calculated,movement_type,movement_detail,complexity"
	wantRow1 = "P1,85,Distribuição,Despacho inicial,N/A,2020-01-01 10:00:00,2020-01-01 10:02:00," +
		"Início do Processo,120,Despacho,Padrão,Simples"
	wantRow2 = "P1,970,Audiência de conciliação,Sentença,Urgente,2020-01-02 10:00:00,2020-01-02 11:00:00," +
		"Audiência,3600,Sentença,Urgente,Médio"
)

func TestRunCommandStructure(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	assert.NotEmpty(t, runCmd.Short)
	assert.Contains(t, runCmd.Long, "Example:")
	assert.NotNil(t, runCmd.RunE)

	for _, name := range []string{"output", "format", "store", "type", "detail", "complexity", "group"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "expected flag %q", name)
	}
}

func executeRun(t *testing.T) (stdout, stderr string, err error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	runCmd.SetOut(&out)
	runCmd.SetErr(&errBuf)
	defer func() {
		runCmd.SetOut(nil)
		runCmd.SetErr(nil)
	}()

	err = runRun(runCmd, nil)
	return out.String(), errBuf.String(), err
}

func TestRunRun_CSVToStdout(t *testing.T) {
	newFixture(t)

	stdout, stderr, err := executeRun(t)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, wantHeader, lines[0])
	assert.Equal(t, wantRow1, lines[1])
	assert.Equal(t, wantRow2, lines[2])

	assert.Contains(t, stderr, "Run Complete")
	assert.Contains(t, stderr, "Rows read:        4")
	assert.Contains(t, stderr, "Enriched:         2")
}

func TestRunRun_OutputFileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	workers = 3

	runOutput = filepath.Join(f.dir, "first.csv")
	_, _, err := executeRun(t)
	require.NoError(t, err)

	runOutput = filepath.Join(f.dir, "second.csv")
	_, _, err = executeRun(t)
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(f.dir, "first.csv"))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(f.dir, "second.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), wantRow2)
}

func TestRunRun_EventLog(t *testing.T) {
	newFixture(t)
	runFormat = "eventlog"

	stdout, _, err := executeRun(t)
	require.NoError(t, err)

	want := "case:concept:name,concept:name,time:timestamp\n" +
		"P1,Distribuição,2020-01-01T10:00:00Z\n" +
		"P1,Audiência de conciliação,2020-01-02T10:00:00Z\n"
	assert.Equal(t, want, stdout)
}

func TestRunRun_Filters(t *testing.T) {
	newFixture(t)
	filterComplexities = []string{"Médio"}

	stdout, stderr, err := executeRun(t)
	require.NoError(t, err)
	assert.NotContains(t, stdout, wantRow1)
	assert.Contains(t, stdout, wantRow2)
	assert.Contains(t, stderr, "Written:")

	filterComplexities = []string{"Dificil"}
	_, _, err = executeRun(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown complexity")
}

func TestRunRun_Store(t *testing.T) {
	f := newFixture(t)
	dbPath := filepath.Join(f.dir, "movements.db")
	configPath := filepath.Join(f.dir, "movenrich.yaml")

	content := fmt.Sprintf(`
store:
  enabled: true
  driver: sqlite
  path: %s
  verify: sha256
  batch_size: 1
`, dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	cfgFile = configPath
	runOutput = filepath.Join(f.dir, "out.csv")

	_, _, err := executeRun(t)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM enriched_movements").Scan(&count))
	assert.Equal(t, 2, count)

	var runs int
	require.NoError(t, db.QueryRow("SELECT COUNT(DISTINCT run_id) FROM enriched_movements").Scan(&runs))
	assert.Equal(t, 1, runs)
}

func TestRunRun_Errors(t *testing.T) {
	t.Run("missing taxonomy", func(t *testing.T) {
		f := newFixture(t)
		taxonomyPath = filepath.Join(f.dir, "nope.json")
		_, _, err := executeRun(t)
		assert.Error(t, err)
	})

	t.Run("missing columns", func(t *testing.T) {
		f := newFixture(t)
		bad := filepath.Join(f.dir, "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("processoID,activity\nP1,x\n"), 0644))
		inputPath = bad
		_, _, err := executeRun(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "movimentoID")
	})

	t.Run("invalid config", func(t *testing.T) {
		newFixture(t)
		runFormat = "parquet"
		_, _, err := executeRun(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.format")
	})
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseOutput(t *testing.T) {
	diskFull := errors.New("no space left on device")
	writeErr := errors.New("failed to write output")

	err := closeOutput(failingCloser{err: diskFull}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "failed to close output file")

	assert.Same(t, writeErr, closeOutput(failingCloser{err: diskFull}, writeErr))
	assert.Same(t, writeErr, closeOutput(failingCloser{}, writeErr))
	assert.NoError(t, closeOutput(failingCloser{}, nil))
}
