package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// MarshalTrace renders a trace as one JSON object per line.
func MarshalTrace(trace []TraceEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, ev := range trace {
		if err := enc.Encode(ev); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// GoldenPath returns the golden file of a scenario file: golden/{name}.golden
// beside it.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes result's trace as the golden file of scenarioFile.
func UpdateGolden(scenarioFile string, result *Result) error {
	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := MarshalTrace(result.Trace)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether result's trace matches the golden file of
// scenarioFile. found is false when there is no golden file.
func CompareGolden(scenarioFile string, result *Result) (match, found bool, err error) {
	want, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := MarshalTrace(result.Trace)
	if err != nil {
		return false, true, fmt.Errorf("failed to marshal trace: %w", err)
	}
	return bytes.Equal(want, got), true, nil
}
