package github

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Executor issues label operations concurrently, one API call per
// operation, and hands every outcome to the aggregator as it settles.
// Operations are never retried.
type Executor struct {
	client     APIClient
	aggregator *Aggregator
}

// NewExecutor creates an executor reporting to aggregator
func NewExecutor(client APIClient, aggregator *Aggregator) *Executor {
	if aggregator == nil {
		aggregator = NewAggregator(nil)
	}
	return &Executor{
		client:     client,
		aggregator: aggregator,
	}
}

// Aggregator returns the aggregator outcomes are recorded in
func (e *Executor) Aggregator() *Aggregator {
	return e.aggregator
}

// Apply runs every operation against owner/repo. Outcomes are returned in
// the order of ops.
func (e *Executor) Apply(ctx context.Context, owner, repo string, ops []Operation) []Outcome {
	outcomes := make([]Outcome, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			outcomes[i] = e.run(ctx, owner, repo, op)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// ApplyOne runs the same operation against every repository of owner.
// Outcomes are returned in the order of repos.
func (e *Executor) ApplyOne(ctx context.Context, owner string, repos []string, op Operation) []Outcome {
	outcomes := make([]Outcome, len(repos))

	var g errgroup.Group
	for i, repo := range repos {
		g.Go(func() error {
			outcomes[i] = e.run(ctx, owner, repo, op)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (e *Executor) run(ctx context.Context, owner, repo string, op Operation) Outcome {
	outcome := e.dispatch(ctx, owner, repo, op)
	e.aggregator.Record(outcome)
	return outcome
}

func (e *Executor) dispatch(ctx context.Context, owner, repo string, op Operation) Outcome {
	switch op.Kind {
	case ChangeTypeCreate:
		return e.client.CreateLabel(ctx, owner, repo, op.Payload)
	case ChangeTypeUpdate:
		return e.client.EditLabel(ctx, owner, repo, op.TargetName, op.Payload)
	case ChangeTypeDelete:
		return e.client.DeleteLabel(ctx, owner, repo, op.TargetName)
	default:
		err := &ValidationError{Field: "kind", Value: string(op.Kind), Message: "unsupported operation"}
		return Outcome{
			Path: labelsPath(owner, repo, op.TargetName),
			Body: err.Error(),
			Err:  err,
		}
	}
}
