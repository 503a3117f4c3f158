// Package github provides GitHub issue label management for labelsync.
// It reconciles a desired label set against the labels of every repository
// in an organization with as few API calls as possible.
//
// The package includes:
// - APIClient interface for the GitHub REST calls labelsync needs
// - Repository discovery over the paginated organization listing
// - Reconcile, the three-way diff between desired and current labels
// - Executor and MultiReconciler for concurrent fan-out across repositories
// - Aggregator for classifying per-request outcomes into a run summary
package github
