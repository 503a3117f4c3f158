package github

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MultiReconciler manages the labels of many repositories of one owner
type MultiReconciler interface {
	// Resolve returns the repositories a target addresses
	Resolve(ctx context.Context, target Target) []string

	// PlanAll creates reconciliation plans for every repository
	PlanAll(ctx context.Context, repos []string, desired []Label, destructive bool) map[string]*ReconciliationPlan

	// ApplyAll executes reconciliation plans for multiple repositories
	ApplyAll(ctx context.Context, plans map[string]*ReconciliationPlan) (*MultiRepoResult, error)

	// ApplyOne runs a single operation against every repository
	ApplyOne(ctx context.Context, repos []string, op Operation) []Outcome

	// Summary returns the totals of every outcome recorded so far
	Summary() RunSummary
}

// MultiRepoResult contains the results of applying plans to many repositories
type MultiRepoResult struct {
	Succeeded []string             `json:"succeeded"`
	Failed    []string             `json:"failed"`
	Skipped   []string             `json:"skipped"`
	Outcomes  map[string][]Outcome `json:"outcomes"`
	Summary   MultiRepoSummary     `json:"summary"`
}

// MultiRepoSummary provides aggregate statistics for an apply run
type MultiRepoSummary struct {
	TotalRepositories int `json:"total_repositories"`
	SuccessCount      int `json:"success_count"`
	FailureCount      int `json:"failure_count"`
	SkippedCount      int `json:"skipped_count"`
	TotalChanges      int `json:"total_changes"`
}

// MultiReconcilerOptions configures a MultiReconciler
type MultiReconcilerOptions struct {
	// Concurrency bounds how many repositories are planned or applied at once
	Concurrency int

	Discovery DiscoveryOptions
	Logger    *zap.Logger
}

// DefaultMultiReconcilerOptions returns the default options
func DefaultMultiReconcilerOptions() MultiReconcilerOptions {
	return MultiReconcilerOptions{
		Concurrency: 5,
		Discovery:   DefaultDiscoveryOptions(),
	}
}

// multiReconciler implements the MultiReconciler interface
type multiReconciler struct {
	client     APIClient
	owner      string
	executor   *Executor
	reconciler Reconciler
	opts       MultiReconcilerOptions
	logger     *zap.Logger
}

// NewMultiReconciler creates a new multi-repository reconciler instance
func NewMultiReconciler(client APIClient, owner string, opts MultiReconcilerOptions) MultiReconciler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultMultiReconcilerOptions().Concurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Discovery.Logger == nil {
		opts.Discovery.Logger = logger
	}

	executor := NewExecutor(client, NewAggregator(logger))
	return &multiReconciler{
		client:     client,
		owner:      owner,
		executor:   executor,
		reconciler: NewReconciler(client, executor, owner, logger),
		opts:       opts,
		logger:     logger.With(zap.String("organization", owner)),
	}
}

// Resolve returns the explicit repository of target, or discovers every
// repository of the owner
func (mr *multiReconciler) Resolve(ctx context.Context, target Target) []string {
	if target.IsSingleRepository() {
		return []string{target.Repository}
	}
	return DiscoverRepositories(ctx, mr.client, mr.owner, mr.opts.Discovery)
}

// PlanAll fetches every repository's labels concurrently and reconciles them
// against desired
func (mr *multiReconciler) PlanAll(ctx context.Context, repos []string, desired []Label, destructive bool) map[string]*ReconciliationPlan {
	plans := make(map[string]*ReconciliationPlan, len(repos))
	var mu sync.Mutex

	mr.logger.Info("planning label changes",
		zap.Int("repositories", len(repos)),
		zap.Int("desired_labels", len(desired)),
		zap.Bool("destructive", destructive))

	var g errgroup.Group
	g.SetLimit(mr.opts.Concurrency)
	for _, repo := range repos {
		g.Go(func() error {
			plan := mr.reconciler.Plan(ctx, repo, desired, destructive)

			mu.Lock()
			plans[repo] = plan
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return plans
}

// ApplyAll applies every plan, bounding the number of repositories processed
// at once. A repository fails when any of its operations failed.
func (mr *multiReconciler) ApplyAll(ctx context.Context, plans map[string]*ReconciliationPlan) (*MultiRepoResult, error) {
	if plans == nil {
		return nil, fmt.Errorf("reconciliation plans cannot be nil")
	}

	result := &MultiRepoResult{
		Succeeded: make([]string, 0),
		Failed:    make([]string, 0),
		Skipped:   make([]string, 0),
		Outcomes:  make(map[string][]Outcome, len(plans)),
		Summary: MultiRepoSummary{
			TotalRepositories: len(plans),
		},
	}

	names := make([]string, 0, len(plans))
	for name, plan := range plans {
		if !plan.HasChanges() {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Summary.TotalChanges += len(plan.Operations)
		names = append(names, name)
	}
	sort.Strings(names)
	sort.Strings(result.Skipped)
	result.Summary.SkippedCount = len(result.Skipped)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(mr.opts.Concurrency)
	for _, name := range names {
		plan := plans[name]
		g.Go(func() error {
			outcomes := mr.reconciler.Apply(ctx, plan)

			mu.Lock()
			result.Outcomes[name] = outcomes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, name := range names {
		if hasFailure(result.Outcomes[name]) {
			result.Failed = append(result.Failed, name)
		} else {
			result.Succeeded = append(result.Succeeded, name)
		}
	}
	result.Summary.SuccessCount = len(result.Succeeded)
	result.Summary.FailureCount = len(result.Failed)

	return result, nil
}

// ApplyOne runs op against every repository
func (mr *multiReconciler) ApplyOne(ctx context.Context, repos []string, op Operation) []Outcome {
	mr.logger.Info("applying label operation",
		zap.String("operation", op.String()),
		zap.Int("repositories", len(repos)))
	return mr.executor.ApplyOne(ctx, mr.owner, repos, op)
}

// Summary returns the totals of every outcome recorded so far
func (mr *multiReconciler) Summary() RunSummary {
	return mr.executor.Aggregator().Summary()
}

func hasFailure(outcomes []Outcome) bool {
	for _, outcome := range outcomes {
		if Classify(outcome) == EffectFailed {
			return true
		}
	}
	return false
}
