package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTree = `{
  "Início do Processo": {"85": {}},
  "Audiência": {"Audiência de Conciliação": {"970": {}}},
  "Publicação": {"92": {}},
  "Despacho": {"11": {}},
  "Outros Tipos": {"11": {}}
}`

const testDataset = `processoID,movimentoID,activity,documento,complemento,dataInicio,dataFinal
P1,85,Distribuição,Despacho inicial,,2020-01-01 10:00:00,2020-01-01 10:02:00
P1,970,Audiência de conciliação,Sentença,Urgente,2020-01-02 10:00:00,2020-01-02 11:00:00
P1,92,Publicação,,,2020-01-03 10:00:00,2020-01-03 10:01:00
P2,85,Distribuição,Ofício,,2020-01-05 08:00:00,not-a-date
`

type fixture struct {
	dir      string
	tree     string
	dataset  string
	noConfig string
}

// newFixture writes a taxonomy and a dataset to a temp dir and points the
// global flags at them. All flag variables are restored on cleanup.
func newFixture(t *testing.T) fixture {
	t.Helper()
	resetFlags(t)

	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		tree:     filepath.Join(dir, "tree.json"),
		dataset:  filepath.Join(dir, "movimentos.csv"),
		noConfig: filepath.Join(dir, "missing.yaml"),
	}
	require.NoError(t, os.WriteFile(f.tree, []byte(testTree), 0644))
	require.NoError(t, os.WriteFile(f.dataset, []byte(testDataset), 0644))

	cfgFile = f.noConfig
	taxonomyPath = f.tree
	inputPath = f.dataset
	logLevel = "error"
	return f
}

func resetFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		cfgFile, logLevel, logFormat, taxonomyPath, inputPath, detailMode string
		workers                                                           int
		runOutput, runFormat                                              string
		runStore                                                          bool
		types, details, complexities, groups                              []string
		top, bins                                                         int
		noColor, list                                                     bool
		lookup                                                            []int64
	}{
		cfgFile, logLevel, logFormat, taxonomyPath, inputPath, detailMode,
		workers,
		runOutput, runFormat,
		runStore,
		filterTypes, filterDetails, filterComplexities, filterGroups,
		summaryTop, summaryBins,
		summaryNoColor, taxonomyList,
		taxonomyLookup,
	}

	t.Cleanup(func() {
		cfgFile, logLevel, logFormat = saved.cfgFile, saved.logLevel, saved.logFormat
		taxonomyPath, inputPath, detailMode = saved.taxonomyPath, saved.inputPath, saved.detailMode
		workers = saved.workers
		runOutput, runFormat, runStore = saved.runOutput, saved.runFormat, saved.runStore
		filterTypes, filterDetails = saved.types, saved.details
		filterComplexities, filterGroups = saved.complexities, saved.groups
		summaryTop, summaryBins, summaryNoColor = saved.top, saved.bins, saved.noColor
		taxonomyList, taxonomyLookup = saved.list, saved.lookup
	})
}

func TestExecute(t *testing.T) {
	// Execute calls os.Exit(1) on error, so only its presence is checked.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	assert.Equal(t, "movenrich.yaml", cfgFile, "cfgFile should default to movenrich.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Equal(t, "", taxonomyPath)
	assert.Equal(t, "", inputPath)
	assert.Equal(t, 0, workers)
	assert.False(t, runStore)
	assert.Equal(t, 10, summaryBins)
}

func TestCommandsAddedToRoot(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "summary", "validate", "taxonomy", "version"} {
		assert.True(t, names[want], "%s command should be added to root command", want)
	}
}
