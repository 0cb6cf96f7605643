package app

import "gitlab-devtools/internal/types"

// RemoteConfig carries the connection parameters of the repository-hosting
// service.
type RemoteConfig struct {
	Server       string
	Token        string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
}

// StorageConfig carries the connection parameters of the remote-storage
// service. Root selects the public or private upload area.
type StorageConfig struct {
	Server     string
	Root       string
	Username   string
	Password   string
	TimeoutSec int
}

type ReleaseRequest struct {
	Remote      RemoteConfig
	Project     string
	TagName     string
	Bump        types.Bump
	TagComments string
	ProfilePath string
	DryRun      bool
}

type ReleaseResult struct {
	TagName    string
	PipelineID int
	DryRun     bool
}

type UpdatePinsRequest struct {
	ManifestPath string
	ProfilePath  string
	OutputPath   string
	DryRun       bool
}

type UpdatePinsResult struct {
	Changed    bool
	Diff       string
	Advisories []types.Advisory
}

type WaitPipelineRequest struct {
	Remote     RemoteConfig
	Project    string
	PipelineID int
}

type WaitPipelineResult struct {
	Status types.PipelineStatus
}

type StorageListRequest struct {
	Storage StorageConfig
	Path    string
}

type StorageMakeDirsRequest struct {
	Storage StorageConfig
	Path    string
}

type StorageMakeDirsResult struct {
	Created []string
	Existed bool
}

type StorageRemoveTreeRequest struct {
	Storage StorageConfig
	Path    string
	Execute bool
}

type StorageRemoveTreeResult struct {
	URL     string
	Existed bool
	Removed bool
}

type StorageUploadRequest struct {
	Storage  StorageConfig
	Locals   []string
	Remote   string
	Execute  bool
	Checksum bool
}

// StorageUploadAction is one planned transfer: a directory creation or a
// file upload.
type StorageUploadAction struct {
	Local  string
	Remote string
	Dir    bool
}

type StorageUploadResult struct {
	Actions  []StorageUploadAction
	Executed bool
}
