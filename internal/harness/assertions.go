package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, actual %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks assertions against the result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertState:
			err = assertState(result.Final(), a)
		case AssertOutputContains:
			err = assertOutputContains(result.Output, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertState compares one snapshot field with the expected value after
// passing both through JSON, so YAML ints and JSON numbers compare equal.
func assertState(snap Snapshot, a Assertion) error {
	fields, err := toJSONMap(snap)
	if err != nil {
		return err
	}
	if !knownField(a.Field) {
		return fmt.Errorf("state assertion: unknown field %q", a.Field)
	}

	got := fields[a.Field]
	want, err := normalize(a.Equals)
	if err != nil {
		return err
	}
	if isZero(got) && isZero(want) || reflect.DeepEqual(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     "state " + a.Field,
		Expected: render(want),
		Actual:   render(got),
	}
}

func assertOutputContains(output string, a Assertion) error {
	if strings.Contains(output, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     "output_contains",
		Expected: fmt.Sprintf("%q in output", a.Text),
		Actual:   fmt.Sprintf("%q", output),
	}
}

func toJSONMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	err = json.Unmarshal(data, &m)
	return m, err
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("state assertion: %w", err)
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}

// isZero treats missing omitempty fields, false, "" and [] alike.
func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}

func knownField(name string) bool {
	t := reflect.TypeOf(Snapshot{})
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == name {
			return true
		}
	}
	return false
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
