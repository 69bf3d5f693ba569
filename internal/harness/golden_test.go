package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match its file name")

			// Regenerate with: go test ./internal/harness -run TestRunWithGolden -update
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestScenarios_Pass(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/input_submit.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	require.NoError(t, AssertGolden(t, "input_submit", result))
}

func TestMarshalSnapshot_Shape(t *testing.T) {
	result := NewResult()
	result.Session = "s"
	result.AddStepTrace(FlowStep{Action: ActionExpire})

	data, err := MarshalSnapshot("empty", result)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `"scenario_name": "empty"`)
	assert.Contains(t, out, `"action": "expire"`)
	assert.NotContains(t, out, `"seq"`)
	assert.Contains(t, out, `"active": null`)
}
