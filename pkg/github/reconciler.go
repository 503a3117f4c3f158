package github

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Reconcile computes the operations that bring current into agreement with
// desired. Names match exactly; colors compare case-insensitively. Creates
// and updates come in desired order, followed by deletes in inventory order
// when destructive is set. current is not modified.
func Reconcile(desired, current []Label, destructive bool) []Operation {
	remaining := make([]Label, len(current))
	copy(remaining, current)

	var operations []Operation
	for _, want := range desired {
		index := indexOfLabel(remaining, want.Name)
		if index < 0 {
			operations = append(operations, CreateOperation(want))
			continue
		}

		have := remaining[index]
		remaining = append(remaining[:index], remaining[index+1:]...)

		if !strings.EqualFold(have.Color, want.Color) {
			operations = append(operations, UpdateOperation(want.Name, want.Color))
		}
	}

	if destructive {
		for _, label := range remaining {
			operations = append(operations, DeleteOperation(label.Name))
		}
	}

	return operations
}

func indexOfLabel(labels []Label, name string) int {
	for i, label := range labels {
		if label.Name == name {
			return i
		}
	}
	return -1
}

// reconciler implements the Reconciler interface for one owner
type reconciler struct {
	client   APIClient
	executor *Executor
	owner    string
	logger   *zap.Logger
}

// NewReconciler creates a new reconciler instance
func NewReconciler(client APIClient, executor *Executor, owner string, logger *zap.Logger) Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reconciler{
		client:   client,
		executor: executor,
		owner:    owner,
		logger:   logger,
	}
}

// Plan fetches the repository's labels and reconciles them against desired
func (r *reconciler) Plan(ctx context.Context, repo string, desired []Label, destructive bool) *ReconciliationPlan {
	current := FetchLabels(ctx, r.client, r.owner, repo, r.logger)
	return &ReconciliationPlan{
		Repository: repo,
		Operations: Reconcile(desired, current, destructive),
	}
}

// Apply executes every operation of plan concurrently
func (r *reconciler) Apply(ctx context.Context, plan *ReconciliationPlan) []Outcome {
	if !plan.HasChanges() {
		return nil
	}
	return r.executor.Apply(ctx, r.owner, plan.Repository, plan.Operations)
}
