package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// ScenarioRun holds the overall result.
type ScenarioRun struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <dir>",
		Short: "Run scripted sessions against an in-process backend",
		Long: `Run every YAML scenario under a directory, checking step
expectations, assertions and, when present, the golden trace in
golden/<name>.golden beside the scenario.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  storefront scenario ./scenarios
  storefront scenario ./scenarios --filter "session_*"
  storefront scenario ./scenarios --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runScenarios(cmd *cobra.Command, opts *ScenarioOptions, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := harness.FindScenarios(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	run := ScenarioRun{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		res := runScenario(cmd, opts, file)
		run.Scenarios = append(run.Scenarios, res)
		if res.Pass {
			run.Passed++
		} else {
			run.Failed++
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		status := "ok"
		if run.Failed > 0 {
			status = "error"
		}
		if err := json.NewEncoder(w).Encode(CLIResponse{Status: status, Data: run}); err != nil {
			return err
		}
	} else if run.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
	} else {
		fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", run.Passed, run.Failed, run.Total)
	}

	if run.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", run.Failed))
	}
	return nil
}

func runScenario(cmd *cobra.Command, opts *ScenarioOptions, file string) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(filepath.Base(file), fmt.Sprintf("load error: %v", err))
	}

	result, err := harness.Run(cmd.Context(), scenario)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution error: %v", err))
	}

	if opts.Update {
		if err := harness.UpdateGolden(file, result); err != nil {
			return fail(scenario.Name, fmt.Sprintf("golden update error: %v", err))
		}
		if text {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", scenario.Name)
		}
		return ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
	}

	match, found, err := harness.CompareGolden(file, result)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("golden comparison error: %v", err))
	}
	if found && !match {
		return fail(scenario.Name, append([]string{"trace does not match golden file (run with --update to regenerate)"}, result.Errors...)...)
	}
	if !result.Pass {
		return fail(scenario.Name, result.Errors...)
	}

	if text {
		fmt.Fprintf(w, "✓ %s\n", scenario.Name)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true}
}
