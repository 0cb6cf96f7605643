package types

// Bump selects which version segment a release increments.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// PipelineStatus values as reported by the hosting service.
type PipelineStatus string

const (
	PipelineStatusRunning  PipelineStatus = "running"
	PipelineStatusPending  PipelineStatus = "pending"
	PipelineStatusSuccess  PipelineStatus = "success"
	PipelineStatusFailed   PipelineStatus = "failed"
	PipelineStatusCanceled PipelineStatus = "canceled"
)

type Project struct {
	ID                int
	PathWithNamespace string
	DefaultBranch     string
}

type ReleaseTag struct {
	Name        string
	TagName     string
	Ref         string
	Description string
}

type Pipeline struct {
	ID     int
	Status PipelineStatus
	Ref    string
	WebURL string
}

type Commit struct {
	ID      string
	ShortID string
}

// FileUpdate is one file rewritten by a release commit.
type FileUpdate struct {
	Path    string
	Content string
}
