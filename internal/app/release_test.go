package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/types"
)

// fakeProject satisfies ports.ProjectPort and records every mutation so the
// release choreography can be asserted step by step.
type fakeProject struct {
	project   types.Project
	files     map[string]string
	releases  []types.ReleaseTag
	pipelines []types.Pipeline

	commits   []fakeCommit
	tags      []types.ReleaseTag
	cancelled []int
}

type fakeCommit struct {
	Branch  string
	Message string
	Files   map[string]string
}

func (f *fakeProject) GetProject(_ context.Context, _ string) (types.Project, error) {
	return f.project, nil
}

func (f *fakeProject) GetRawFile(_ context.Context, _ string, path string, _ string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file %q", path)
	}
	return []byte(content), nil
}

func (f *fakeProject) CommitFiles(_ context.Context, _ string, branch string, message string, files []types.FileUpdate) (types.Commit, error) {
	commit := fakeCommit{Branch: branch, Message: message, Files: map[string]string{}}
	for _, file := range files {
		commit.Files[file.Path] = file.Content
		f.files[file.Path] = file.Content
	}
	f.commits = append(f.commits, commit)
	return types.Commit{ID: fmt.Sprintf("commit-%d", len(f.commits)), ShortID: "abc"}, nil
}

func (f *fakeProject) ListReleaseTags(_ context.Context, _ string) ([]types.ReleaseTag, error) {
	return f.releases, nil
}

func (f *fakeProject) CreateReleaseTag(_ context.Context, _ string, tag types.ReleaseTag) error {
	f.tags = append(f.tags, tag)
	return nil
}

func (f *fakeProject) LastPipeline(_ context.Context, _ string) (types.Pipeline, error) {
	if len(f.pipelines) == 0 {
		return types.Pipeline{}, fmt.Errorf("no pipelines")
	}
	pipeline := f.pipelines[0]
	if len(f.pipelines) > 1 {
		f.pipelines = f.pipelines[1:]
	}
	return pipeline, nil
}

func (f *fakeProject) GetPipeline(_ context.Context, _ string, pipelineID int) (types.Pipeline, error) {
	for _, pipeline := range f.pipelines {
		if pipeline.ID == pipelineID {
			return pipeline, nil
		}
	}
	return types.Pipeline{}, fmt.Errorf("no pipeline %d", pipelineID)
}

func (f *fakeProject) CancelPipeline(_ context.Context, _ string, pipelineID int) error {
	f.cancelled = append(f.cancelled, pipelineID)
	return nil
}

// fakeProfiles satisfies ports.PinSourcePort.
type fakeProfiles struct {
	profile types.PinProfile
	err     error
}

func (f fakeProfiles) LoadProfile(_ string) (types.PinProfile, error) {
	return f.profile, f.err
}

const releaseReadme = `# sample

[![pipeline](https://gitlab.example.com/group/sample/badges/main/pipeline.svg)](https://gitlab.example.com/group/sample/commits/main)
`

const releaseManifest = `[project]
name = "sample"
version = "2.0.1b0"
dependencies = [
    "pkg-a",
    "pkg-b >= 2.5",
]
`

func newReleaseFake() *fakeProject {
	return &fakeProject{
		project: types.Project{ID: 1, PathWithNamespace: "group/sample", DefaultBranch: "main"},
		files: map[string]string{
			"README.md":      releaseReadme,
			"pyproject.toml": releaseManifest,
		},
		releases: []types.ReleaseTag{
			{Name: "v2.0.0", TagName: "v2.0.0"},
			{Name: "v1.9.0", TagName: "v1.9.0"},
		},
		pipelines: []types.Pipeline{
			{ID: 11, Status: types.PipelineStatusRunning},
			{ID: 12, Status: types.PipelineStatusRunning},
		},
	}
}

func newReleaseService(fake *fakeProject) Service {
	return Service{
		Profiles: fakeProfiles{profile: types.PinProfile{
			Name: "stable",
			Pins: []string{"pkg-a == 1.2.3", "pkg-b == 2.8"},
		}},
		NewProject: func(_ RemoteConfig) ports.ProjectPort { return fake },
		Clock:      time.Now,
		Sleep:      func(time.Duration) {},
	}
}

func TestRelease(t *testing.T) {
	fake := newReleaseFake()
	svc := newReleaseService(fake)

	result, err := svc.Release(context.Background(), ReleaseRequest{
		Project:     "group/sample",
		Bump:        types.BumpPatch,
		TagComments: "bugfix release",
		ProfilePath: "profiles/stable.yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2.0.1", result.TagName)
	assert.Equal(t, 12, result.PipelineID)
	assert.False(t, result.DryRun)

	// release commit, then the back-to-latest commit
	require.Len(t, fake.commits, 2)
	release := fake.commits[0]
	assert.Equal(t, "main", release.Branch)
	assert.Equal(t, "Increased stable version to 2.0.1", release.Message)
	assert.Contains(t, release.Files["README.md"], "badges/v2.0.1/pipeline.svg")
	assert.Contains(t, release.Files["pyproject.toml"], "version = '2.0.1'")
	assert.Contains(t, release.Files["pyproject.toml"], "pkg-a==1.2.3")
	assert.Contains(t, release.Files["pyproject.toml"], "pkg-b==2.8")

	latest := fake.commits[1]
	assert.Equal(t, "Increased latest version to 2.0.2b0 [skip ci]", latest.Message)
	assert.Equal(t, releaseReadme, latest.Files["README.md"])
	assert.Contains(t, latest.Files["pyproject.toml"], "version = '2.0.2b0'")
	// the latest manifest keeps dependencies unpinned
	assert.NotContains(t, latest.Files["pyproject.toml"], "pkg-a==1.2.3")

	// pipeline of the release commit is cancelled, tag points at the branch
	assert.Equal(t, []int{11}, fake.cancelled)
	require.Len(t, fake.tags, 1)
	assert.Equal(t, "v2.0.1", fake.tags[0].TagName)
	assert.Equal(t, "main", fake.tags[0].Ref)
	assert.Equal(t, "bugfix release", fake.tags[0].Description)
}

func TestReleaseExplicitTag(t *testing.T) {
	fake := newReleaseFake()
	svc := newReleaseService(fake)

	result, err := svc.Release(context.Background(), ReleaseRequest{
		Project: "group/sample",
		TagName: "v3.0.0",
	})
	require.NoError(t, err)
	assert.Equal(t, "v3.0.0", result.TagName)
}

func TestReleaseFirstEver(t *testing.T) {
	fake := newReleaseFake()
	fake.releases = nil
	svc := newReleaseService(fake)

	result, err := svc.Release(context.Background(), ReleaseRequest{
		Project: "group/sample",
		Bump:    types.BumpMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", result.TagName)
}

func TestReleaseDryRun(t *testing.T) {
	fake := newReleaseFake()
	svc := newReleaseService(fake)

	result, err := svc.Release(context.Background(), ReleaseRequest{
		Project: "group/sample",
		Bump:    types.BumpMinor,
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, "v2.1.0", result.TagName)

	// nothing written remotely
	assert.Empty(t, fake.commits)
	assert.Empty(t, fake.tags)
	assert.Empty(t, fake.cancelled)
}

func TestReleaseValidation(t *testing.T) {
	svc := newReleaseService(newReleaseFake())

	_, err := svc.Release(context.Background(), ReleaseRequest{Project: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project is required")

	_, err = svc.Release(context.Background(), ReleaseRequest{
		Project: "group/sample",
		TagName: "2.0.1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a v-prefixed")
}

func TestReleaseConflictingPinAborts(t *testing.T) {
	fake := newReleaseFake()
	svc := newReleaseService(fake)
	svc.Profiles = fakeProfiles{profile: types.PinProfile{
		Name: "stable",
		Pins: []string{"pkg-b == 2.4"},
	}}

	_, err := svc.Release(context.Background(), ReleaseRequest{
		Project:     "group/sample",
		Bump:        types.BumpPatch,
		ProfilePath: "profiles/stable.yaml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible pin")
	assert.Empty(t, fake.commits)
	assert.Empty(t, fake.tags)
}

func TestReleaseTagDerivation(t *testing.T) {
	tests := []struct {
		latest string
		bump   types.Bump
		want   string
	}{
		{"v2.0.0", types.BumpPatch, "v2.0.1"},
		{"v2.0.0", types.BumpMinor, "v2.1.0"},
		{"v2.0.0", types.BumpMajor, "v3.0.0"},
	}
	for _, tt := range tests {
		fake := newReleaseFake()
		fake.releases = []types.ReleaseTag{{Name: tt.latest, TagName: tt.latest}}
		svc := newReleaseService(fake)
		result, err := svc.Release(context.Background(), ReleaseRequest{
			Project: "group/sample",
			Bump:    tt.bump,
		})
		require.NoError(t, err)
		if !strings.EqualFold(tt.want, result.TagName) {
			t.Fatalf("latest %s bump %s: want %s, got %s", tt.latest, tt.bump, tt.want, result.TagName)
		}
	}
}
