package ports

import (
	"context"

	"gitlab-devtools/internal/types"
)

// StoragePort is the remote-storage surface: existence checks, listing,
// directory creation, recursive deletion, and file uploads.
type StoragePort interface {
	Check(ctx context.Context, path string) (bool, error)
	Info(ctx context.Context, path string) (types.StorageEntry, error)
	List(ctx context.Context, path string) ([]types.StorageEntry, error)
	MkDir(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	UploadFile(ctx context.Context, local string, remote string) error
	ResourceURL(path string) string
}
