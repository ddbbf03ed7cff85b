package state

import "fmt"

// IntentError reports an intent that no transition function accepts.
type IntentError struct {
	Domain Domain
	Intent string
}

func (e *IntentError) Error() string {
	return fmt.Sprintf("%s: unknown intent %s", e.Domain, e.Intent)
}

func unknownIntent(d Domain, in Intent) *IntentError {
	name := "<nil>"
	if in != nil {
		name = in.Name()
	}
	return &IntentError{Domain: d, Intent: name}
}
