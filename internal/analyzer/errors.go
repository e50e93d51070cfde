package analyzer

import (
	"strings"

	"github.com/ginjaninja78/hscode-reconciler/internal/validation"
)

// InputError reports input files that failed validation.
type InputError struct {
	Reports []*validation.Report
}

func newInputError(reports []*validation.Report) *InputError {
	for _, r := range reports {
		if !r.IsValid() {
			return &InputError{Reports: reports}
		}
	}
	return nil
}

func (e *InputError) Error() string {
	var msgs []string
	for _, r := range e.Reports {
		for _, m := range r.Errors() {
			msgs = append(msgs, string(r.Kind)+": "+m)
		}
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}
