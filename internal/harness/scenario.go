package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted storefront session.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Setup prepares the backend and the session mirror before startup.
	Setup Setup `yaml:"setup,omitempty"`

	// Steps are shell command lines, run in order after startup.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final snapshot and transcript.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Setup holds fixtures.
type Setup struct {
	Users []User `yaml:"users,omitempty"`

	// Persisted pre-seeds the session mirror, as a previous run would
	// have left it.
	Persisted *Persisted `yaml:"persisted,omitempty"`

	// CatalogFailures makes the next N item requests fail with 503.
	CatalogFailures int `yaml:"catalog_failures,omitempty"`

	// BagDedup turns on bag add deduplication.
	BagDedup bool `yaml:"bag_dedup,omitempty"`
}

// User is a backend account.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
}

// Persisted is a stored session.
type Persisted struct {
	Token string `yaml:"token"`
	Email string `yaml:"email"`
}

// Step is one command line and what it should do.
type Step struct {
	Run string `yaml:"run"`

	// ExpectError, when set, requires the step to fail with a message
	// containing it. Otherwise the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`

	// ExpectOutput requires the step's output to contain it.
	ExpectOutput string `yaml:"expect_output,omitempty"`

	// Backend actions applied before the command runs.
	RotateSecret    string `yaml:"rotate_secret,omitempty"`
	CatalogFailures int    `yaml:"catalog_failures,omitempty"`
}

// Assertion checks the final session.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Field names a Snapshot JSON field (used by state).
	Field string `yaml:"field,omitempty"`

	// Equals is the expected value (used by state).
	Equals any `yaml:"equals,omitempty"`

	// Text is looked for in the transcript (used by output_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion types.
const (
	AssertState          = "state"
	AssertOutputContains = "output_contains"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain slashes or spaces", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps must contain at least one step")
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Run) == "" {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if step.CatalogFailures < 0 {
			return fmt.Errorf("steps[%d]: catalog_failures must be non-negative", i)
		}
	}
	if s.Setup.CatalogFailures < 0 {
		return fmt.Errorf("setup: catalog_failures must be non-negative")
	}
	for i, u := range s.Setup.Users {
		if u.Email == "" || u.Password == "" {
			return fmt.Errorf("setup.users[%d]: email and password are required", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(a Assertion, index int) error {
	switch a.Type {
	case AssertState:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for state", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
