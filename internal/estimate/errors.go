package estimate

import (
	"fmt"
	"sort"
	"strings"
)

// Failure kinds reported to callers.
const (
	KindValidation = "validation"
	KindInference  = "inference"
)

// ValidationError reports fields that are missing, null or unusable.
// No inference is attempted when it is returned.
type ValidationError struct {
	Missing []string
	Invalid map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "please fill in all fields (missing: "+strings.Join(e.Missing, ", ")+")")
	}
	if len(e.Invalid) > 0 {
		names := make([]string, 0, len(e.Invalid))
		for name := range e.Invalid {
			names = append(names, name)
		}
		sort.Strings(names)

		invalid := make([]string, len(names))
		for i, name := range names {
			invalid[i] = fmt.Sprintf("%s: %s", name, e.Invalid[name])
		}
		parts = append(parts, "invalid fields ("+strings.Join(invalid, "; ")+")")
	}
	if len(parts) == 0 {
		return "please fill in all fields"
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

func (e *ValidationError) invalid(name, reason string) {
	if e.Invalid == nil {
		e.Invalid = make(map[string]string)
	}
	e.Invalid[name] = reason
}

// InferenceError wraps an error raised by the predictor. Its message is the
// predictor's own text.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
