package app

import (
	"time"

	"gitlab-devtools/internal/adapters"
	"gitlab-devtools/internal/ports"
)

// Service wires the application flows to their collaborators. The factory
// fields build per-request adapters (connection parameters travel with each
// request); tests swap them for fakes. Clock and Sleep exist so the
// pipeline-wait loop can run instantly under test.
type Service struct {
	Profiles   ports.PinSourcePort
	Manifests  ports.ManifestFilePort
	NewProject func(cfg RemoteConfig) ports.ProjectPort
	NewStorage func(cfg StorageConfig) ports.StoragePort
	Clock      func() time.Time
	Sleep      func(d time.Duration)
}

func NewService() Service {
	return Service{
		Profiles:  adapters.NewProfileSourceAdapter(),
		Manifests: adapters.NewManifestFileAdapter(),
		NewProject: func(cfg RemoteConfig) ports.ProjectPort {
			return adapters.NewGitLabAdapter(cfg.Server, cfg.Token, cfg.TimeoutSec, cfg.Retries, cfg.RetryDelayMs)
		},
		NewStorage: func(cfg StorageConfig) ports.StoragePort {
			return adapters.NewWebDAVAdapter(cfg.Server, cfg.Root, cfg.Username, cfg.Password, cfg.TimeoutSec)
		},
		Clock: time.Now,
		Sleep: time.Sleep,
	}
}
