package ports

import (
	"context"

	"gitlab-devtools/internal/types"
)

// ProjectPort is the surface of the repository-hosting service the release
// flows need: file content, commits, release tags, and pipelines.
type ProjectPort interface {
	GetProject(ctx context.Context, project string) (types.Project, error)
	GetRawFile(ctx context.Context, project string, path string, ref string) ([]byte, error)
	CommitFiles(ctx context.Context, project string, branch string, message string, files []types.FileUpdate) (types.Commit, error)
	ListReleaseTags(ctx context.Context, project string) ([]types.ReleaseTag, error)
	CreateReleaseTag(ctx context.Context, project string, tag types.ReleaseTag) error
	LastPipeline(ctx context.Context, project string) (types.Pipeline, error)
	GetPipeline(ctx context.Context, project string, pipelineID int) (types.Pipeline, error)
	CancelPipeline(ctx context.Context, project string, pipelineID int) error
}
