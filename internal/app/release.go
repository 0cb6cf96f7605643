package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gitlab-devtools/internal/core"
	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/types"
)

const readmeFileName = "README.md"
const manifestFileName = "pyproject.toml"

// pipelineSettleDelay gives the hosting service time to register a pipeline
// triggered by a commit or tag before we look it up.
const pipelineSettleDelay = 10 * time.Second

// Release runs the full release procedure against a project: rewrite
// README and manifest for the release version, commit, cancel the pipeline
// that commit triggers, create the release tag, then restore the README and
// bump the manifest to the next beta with a skip-ci commit. In dry-run mode
// nothing is written remotely; the would-be changes are logged as unified
// diffs.
func (s Service) Release(ctx context.Context, req ReleaseRequest) (ReleaseResult, error) {
	projectPath := strings.TrimSpace(req.Project)
	if projectPath == "" {
		return ReleaseResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project is required")
	}
	client := s.NewProject(req.Remote)
	project, err := client.GetProject(ctx, projectPath)
	if err != nil {
		return ReleaseResult{}, err
	}

	tagName, err := s.resolveTagName(ctx, client, projectPath, req)
	if err != nil {
		return ReleaseResult{}, err
	}
	version := strings.TrimPrefix(tagName, "v")

	table, err := s.loadPinTable(req.ProfilePath)
	if err != nil {
		return ReleaseResult{}, err
	}

	readmeOrig, err := client.GetRawFile(ctx, projectPath, readmeFileName, project.DefaultBranch)
	if err != nil {
		return ReleaseResult{}, err
	}
	manifestOrig, err := client.GetRawFile(ctx, projectPath, manifestFileName, project.DefaultBranch)
	if err != nil {
		return ReleaseResult{}, err
	}

	readmeRelease := core.UpdateReadme(string(readmeOrig), version, project.DefaultBranch)
	manifestRelease, advisories, err := renderManifest(manifestOrig, version, project.DefaultBranch, true, table)
	if err != nil {
		return ReleaseResult{}, err
	}
	logAdvisories(advisories)

	if req.DryRun {
		log.Info().Msgf("changes to release (from latest):\n%s",
			core.UnifiedDiff(string(readmeOrig), readmeRelease, readmeFileName))
		log.Info().Msgf("changes to release (from latest):\n%s",
			core.UnifiedDiff(string(manifestOrig), manifestRelease, manifestFileName))
	} else {
		_, err = client.CommitFiles(ctx, projectPath, project.DefaultBranch,
			fmt.Sprintf("Increased stable version to %s", version),
			[]types.FileUpdate{
				{Path: readmeFileName, Content: readmeRelease},
				{Path: manifestFileName, Content: manifestRelease},
			})
		if err != nil {
			return ReleaseResult{}, err
		}
		// cancel the pipeline triggered by the release commit
		if err := s.cancelLastPipeline(ctx, client, projectPath, project); err != nil {
			return ReleaseResult{}, err
		}
	}

	log.Info().Str("tag", tagName).Str("project", project.PathWithNamespace).Msg("tagging release")
	if !req.DryRun {
		err = client.CreateReleaseTag(ctx, projectPath, types.ReleaseTag{
			Name:        tagName,
			TagName:     tagName,
			Ref:         project.DefaultBranch,
			Description: req.TagComments,
		})
		if err != nil {
			return ReleaseResult{}, err
		}
	}

	var pipelineID int
	if !req.DryRun {
		pipeline, err := s.lastPipeline(ctx, client, projectPath)
		if err != nil {
			return ReleaseResult{}, err
		}
		pipelineID = pipeline.ID
	}

	nextVersion, err := core.NextBetaVersion(version)
	if err != nil {
		return ReleaseResult{}, err
	}
	manifestLatest, _, err := renderManifest(manifestOrig, nextVersion, project.DefaultBranch, false, nil)
	if err != nil {
		return ReleaseResult{}, err
	}
	if req.DryRun {
		log.Info().Msgf("changes from release (to latest):\n%s",
			core.UnifiedDiff(manifestRelease, manifestLatest, manifestFileName))
	} else {
		_, err = client.CommitFiles(ctx, projectPath, project.DefaultBranch,
			fmt.Sprintf("Increased latest version to %s [skip ci]", nextVersion),
			[]types.FileUpdate{
				{Path: readmeFileName, Content: string(readmeOrig)},
				{Path: manifestFileName, Content: manifestLatest},
			})
		if err != nil {
			return ReleaseResult{}, err
		}
	}

	return ReleaseResult{TagName: tagName, PipelineID: pipelineID, DryRun: req.DryRun}, nil
}

// resolveTagName returns the explicit tag when one is given, otherwise
// derives the next tag from the latest release and the requested bump.
func (s Service) resolveTagName(ctx context.Context, client ports.ProjectPort, projectPath string, req ReleaseRequest) (string, error) {
	if explicit := strings.TrimSpace(req.TagName); explicit != "" {
		if !strings.HasPrefix(explicit, "v") || !core.IsPEP440Version(strings.TrimPrefix(explicit, "v")) {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("tag name %q is not a v-prefixed PEP 440 version", explicit))
		}
		return explicit, nil
	}
	releases, err := client.ListReleaseTags(ctx, projectPath)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(releases))
	for _, release := range releases {
		names = append(names, release.TagName)
	}
	latest, _ := core.LatestVersionTag(names)
	return core.NextVersion(latest, req.Bump)
}

func (s Service) loadPinTable(profilePath string) (map[string]types.Requirement, error) {
	if strings.TrimSpace(profilePath) == "" {
		return nil, nil
	}
	profile, err := s.Profiles.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	pins, err := core.ParsePins(profile.Pins)
	if err != nil {
		return nil, err
	}
	return core.BuildPinTable(pins)
}

// lastPipeline waits for the service to register a freshly triggered
// pipeline, then fetches the most recent one.
func (s Service) lastPipeline(ctx context.Context, client ports.ProjectPort, projectPath string) (types.Pipeline, error) {
	s.Sleep(pipelineSettleDelay)
	return client.LastPipeline(ctx, projectPath)
}

func (s Service) cancelLastPipeline(ctx context.Context, client ports.ProjectPort, projectPath string, project types.Project) error {
	pipeline, err := s.lastPipeline(ctx, client, projectPath)
	if err != nil {
		return err
	}
	log.Info().
		Int("pipeline", pipeline.ID).
		Str("project", project.PathWithNamespace).
		Msg("cancelling the pipeline triggered by the release commit")
	return client.CancelPipeline(ctx, projectPath, pipeline.ID)
}

// renderManifest applies the version, optional pins, and optional URL
// rewrite to manifest text, returning the new text.
func renderManifest(contents []byte, version string, defaultBranch string, updateURLs bool, table map[string]types.Requirement) (string, []types.Advisory, error) {
	manifest, err := core.ParseManifest(contents)
	if err != nil {
		return "", nil, err
	}
	if core.IsPEP440Version(version) {
		manifest.SetVersion(version)
	} else {
		log.Info().
			Str("version", version).
			Msg("not setting manifest version as it is not PEP 440 compliant")
	}
	var advisories []types.Advisory
	if table != nil {
		advisories, err = manifest.PinDependencies(table)
		if err != nil {
			return "", nil, err
		}
	}
	if updateURLs {
		manifest.RewriteDocumentationURL(version, defaultBranch)
	}
	rendered, err := manifest.Render()
	if err != nil {
		return "", nil, err
	}
	return string(rendered), advisories, nil
}

func logAdvisories(advisories []types.Advisory) {
	for _, advisory := range advisories {
		log.Debug().
			Str("package", advisory.Package).
			Str("reason", string(advisory.Reason)).
			Msg(advisory.Detail)
	}
}
