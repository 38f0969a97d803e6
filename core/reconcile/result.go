package reconcile

import "go.uber.org/zap"

// Summary counts the operations of a run by kind.
type Summary struct {
	Adds    int `json:"adds"`
	Edits   int `json:"edits"`
	Deletes int `json:"deletes"`
	Skipped int `json:"skipped"`
}

// Result is the outcome of one reconciliation run.
type Result struct {
	// Warnings holds data-quality findings in emission order.
	Warnings []string `json:"warnings"`

	// Operations holds the applied (or, in a dry run, simulated) operations in order.
	Operations []Operation `json:"operations"`

	// Summary aggregates Operations.
	Summary Summary `json:"summary"`

	logger *zap.Logger
}

func newResult(logger *zap.Logger) *Result {
	return &Result{
		Warnings:   []string{},
		Operations: []Operation{},
		logger:     logger,
	}
}

func (r *Result) addWarning(warning string) {
	r.logger.Warn(warning)
	r.Warnings = append(r.Warnings, warning)
}

func (r *Result) addOperation(op Operation) {
	r.logger.Info("Operation", zap.String("type", string(op.Type())), zap.Stringer("op", op))
	r.Operations = append(r.Operations, op)

	switch op.Type() {
	case OperationAdd:
		r.Summary.Adds++
	case OperationEdit:
		r.Summary.Edits++
	case OperationDelete:
		r.Summary.Deletes++
	}
}

func (r *Result) addSkipped(warning string) {
	r.Summary.Skipped++
	r.addWarning(warning)
}

// HasChanges reports whether the run produced any operation.
func (r *Result) HasChanges() bool {
	return len(r.Operations) > 0
}

// IsClean reports whether the run found nothing to do and nothing to warn about.
func (r *Result) IsClean() bool {
	return len(r.Operations) == 0 && len(r.Warnings) == 0
}
