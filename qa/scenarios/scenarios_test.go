package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			failures, err := Run(sc)
			require.NoError(t, err)
			for _, f := range failures {
				t.Error(f)
			}
		})
	}
}

func TestRunReportsMismatch(t *testing.T) {
	want := 1.0
	sc := &Scenario{
		Name:   "wrong",
		Group:  []uint64{1},
		Bounds: MetricsDef{Inclusion: BoundsDef{Lower: -10, Upper: 10}},
		Steps: []Step{{
			Propose: &ProposalDef{Source: "a", Priority: 1, Power: 5},
			Target:  &want,
			Reports: []ReportDef{{Priority: 0, Lower: 0, Upper: 0}},
		}},
	}
	failures, err := Run(sc)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, 0, failures[0].Step)
	assert.Contains(t, failures[0].String(), "target 5.0, want 1.0")
}

func TestRunErrors(t *testing.T) {
	_, err := Run(&Scenario{Algorithm: "unknown", Group: []uint64{1}})
	assert.Error(t, err)

	_, err = Run(&Scenario{Group: []uint64{1}, Steps: []Step{{
		Propose: &ProposalDef{Bounds: &BoundsDef{Lower: 1, Upper: -1}},
	}}})
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: x\n"), 0o644))
	_, err = Load(empty)
	assert.Error(t, err)
}
