package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Mutator forwards operations to the mirror system.
// Each call must complete before the next operation is decided.
type Mutator interface {
	CreateSubscriber(ctx context.Context, op AddSubscriber) error
	UpdateSubscriber(ctx context.Context, op EditSubscriber) error
	DeleteSubscriber(ctx context.Context, op DeleteSubscriber) error
}

// Spec configures a reconciliation run.
type Spec struct {
	// Mutator receives every operation unless DryRun is set. Required for live runs.
	Mutator Mutator

	// DryRun applies operations to the working index only.
	DryRun bool

	// Skippable classifies mutator errors that are reported as warnings instead of aborting.
	// Nil treats every mutator error as fatal.
	Skippable func(error) bool

	// Logger receives operations and warnings as they are emitted. Nil disables logging.
	Logger *zap.Logger
}

func (s *Spec) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Spec) validate() error {
	if !s.DryRun && s.Mutator == nil {
		return ErrMutatorRequired
	}
	return nil
}

// gateway is the single point where operations take effect, locally and remotely.
type gateway struct {
	spec   *Spec
	mirror *mirrorIndex
	result *Result
}

// apply validates op against the working index, forwards it to the mutator
// unless this is a dry run, then commits it locally and logs it.
// It returns false when the mutator rejected op with a skippable error; the
// working index and the operation log are then left unchanged.
func (g *gateway) apply(ctx context.Context, id string, op Operation) (bool, error) {
	next, err := g.mirror.with(op)
	if err != nil {
		return false, fmt.Errorf("failed to apply %s: %w", op, err)
	}

	if !g.spec.DryRun {
		if err := g.forward(ctx, op); err != nil {
			if g.spec.Skippable != nil && g.spec.Skippable(err) {
				g.result.addSkipped(fmt.Sprintf("Skipped id=%q: %s failed: %v", id, op, err))
				return false, nil
			}
			return false, &MutationError{
				Op:      op,
				Err:     err,
				Applied: append([]Operation(nil), g.result.Operations...),
			}
		}
	}

	g.mirror = next
	g.result.addOperation(op)
	return true, nil
}

func (g *gateway) forward(ctx context.Context, op Operation) error {
	switch op := op.(type) {
	case AddSubscriber:
		return g.spec.Mutator.CreateSubscriber(ctx, op)
	case EditSubscriber:
		return g.spec.Mutator.UpdateSubscriber(ctx, op)
	case DeleteSubscriber:
		return g.spec.Mutator.DeleteSubscriber(ctx, op)
	default:
		return fmt.Errorf("unknown operation type %T", op)
	}
}
