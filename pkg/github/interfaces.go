package github

import "context"

// APIClient defines the GitHub API operations labelsync relies on
type APIClient interface {
	// Repository discovery
	ListOrganizationRepositories(ctx context.Context, org string, page, perPage int) ([]string, error)

	// Label operations
	ListLabels(ctx context.Context, owner, repo string) ([]Label, error)
	CreateLabel(ctx context.Context, owner, repo string, label Label) Outcome
	EditLabel(ctx context.Context, owner, repo, name string, label Label) Outcome
	DeleteLabel(ctx context.Context, owner, repo, name string) Outcome

	// Repository contents
	GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error)
}

// Reconciler plans and applies label changes for the repositories of one owner
type Reconciler interface {
	// Plan compares the desired labels with the repository's current labels
	Plan(ctx context.Context, repo string, desired []Label, destructive bool) *ReconciliationPlan

	// Apply executes the plan and returns one outcome per operation
	Apply(ctx context.Context, plan *ReconciliationPlan) []Outcome
}

// ChangeType represents the type of change in a reconciliation plan
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// Operation is a single label mutation. TargetName addresses an existing
// label for updates and deletes; Payload is what gets sent.
type Operation struct {
	Kind       ChangeType `json:"kind"`
	TargetName string     `json:"target_name"`
	Payload    Label      `json:"payload"`
}

// CreateOperation creates a label on the repository's label collection
func CreateOperation(label Label) Operation {
	return Operation{Kind: ChangeTypeCreate, TargetName: label.Name, Payload: label}
}

// UpdateOperation changes the color of the label called name
func UpdateOperation(name, color string) Operation {
	return Operation{Kind: ChangeTypeUpdate, TargetName: name, Payload: Label{Name: name, Color: color}}
}

// RenameOperation patches the label found at oldName so that it is called newName
func RenameOperation(oldName, newName string) Operation {
	return Operation{Kind: ChangeTypeUpdate, TargetName: oldName, Payload: Label{Name: newName}}
}

// DeleteOperation removes the label called name
func DeleteOperation(name string) Operation {
	return Operation{Kind: ChangeTypeDelete, TargetName: name, Payload: Label{Name: name}}
}
