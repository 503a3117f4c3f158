package github

import (
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Effect is the classified result of one label mutation
type Effect string

const (
	EffectCreated  Effect = "created"
	EffectUpdated  Effect = "updated"
	EffectDeleted  Effect = "deleted"
	EffectConflict Effect = "conflict"
	EffectFailed   Effect = "failed"
)

// Classify maps an outcome to its effect by status code
func Classify(outcome Outcome) Effect {
	switch code := outcome.StatusCode; {
	case code == http.StatusOK:
		return EffectUpdated
	case code == http.StatusCreated:
		return EffectCreated
	case code == http.StatusNoContent:
		return EffectDeleted
	case code == http.StatusUnprocessableEntity:
		return EffectConflict
	case code >= 200 && code < 300:
		return EffectUpdated
	default:
		return EffectFailed
	}
}

// Succeeded reports whether the outcome carried a 2xx status
func (o Outcome) Succeeded() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// RunSummary totals the outcomes of one run
type RunSummary struct {
	UpdateCount       int            `json:"update_count"`
	AffectedRepoCount int            `json:"affected_repo_count"`
	AffectedRepos     []string       `json:"affected_repos,omitempty"`
	Effects           map[Effect]int `json:"effects"`
}

// Failures returns the number of outcomes classified as failed
func (s RunSummary) Failures() int {
	return s.Effects[EffectFailed]
}

// Aggregator accumulates outcomes from concurrent operations and logs one
// line per outcome. It is safe for concurrent use.
type Aggregator struct {
	logger *zap.Logger

	mu       sync.Mutex
	updates  int
	affected map[string]struct{}
	effects  map[Effect]int
}

// NewAggregator creates an empty aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		logger:   logger,
		affected: make(map[string]struct{}),
		effects:  make(map[Effect]int),
	}
}

// Record classifies outcome, updates the counters and logs it
func (a *Aggregator) Record(outcome Outcome) Effect {
	effect := Classify(outcome)
	repo := outcome.Repository()

	a.mu.Lock()
	a.effects[effect]++
	if outcome.Succeeded() {
		a.updates++
		if repo != "" {
			a.affected[repo] = struct{}{}
		}
	}
	a.mu.Unlock()

	fields := []zap.Field{
		zap.String("repository", repo),
		zap.String("label", outcome.LabelName()),
		zap.Int("status", outcome.StatusCode),
	}

	switch effect {
	case EffectCreated:
		a.logger.Info("label created", fields...)
	case EffectUpdated:
		a.logger.Info("label updated", fields...)
	case EffectDeleted:
		a.logger.Info("label deleted", fields...)
	case EffectConflict:
		a.logger.Warn("label already exists", append(fields, zap.String("body", outcome.Body))...)
	default:
		a.logger.Error("label operation failed",
			append(fields, zap.String("path", outcome.Path), zap.String("body", outcome.Body))...)
	}

	return effect
}

// Summary returns the totals recorded so far
func (a *Aggregator) Summary() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	repos := make([]string, 0, len(a.affected))
	for repo := range a.affected {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	effects := make(map[Effect]int, len(a.effects))
	for effect, count := range a.effects {
		effects[effect] = count
	}

	return RunSummary{
		UpdateCount:       a.updates,
		AffectedRepoCount: len(repos),
		AffectedRepos:     repos,
		Effects:           effects,
	}
}

// Summarize totals a batch of outcomes without logging
func Summarize(outcomes []Outcome) RunSummary {
	aggregator := NewAggregator(nil)
	for _, outcome := range outcomes {
		aggregator.Record(outcome)
	}
	return aggregator.Summary()
}
