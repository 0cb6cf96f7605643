package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gitlab-devtools/internal/core"
)

// UpdatePins rewrites the dependency lists of a local manifest so every
// package covered by the constraint profile carries the profile's pin. The
// manifest version and URLs are left alone. With DryRun set, nothing is
// written; the unified diff of the would-be change is returned either way.
func (s Service) UpdatePins(req UpdatePinsRequest) (UpdatePinsResult, error) {
	if strings.TrimSpace(req.ProfilePath) == "" {
		return UpdatePinsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("a constraint profile is required to update pins")
	}
	table, err := s.loadPinTable(req.ProfilePath)
	if err != nil {
		return UpdatePinsResult{}, err
	}

	original, err := s.Manifests.Load(req.ManifestPath)
	if err != nil {
		return UpdatePinsResult{}, err
	}
	manifest, err := core.ParseManifest(original)
	if err != nil {
		return UpdatePinsResult{}, err
	}
	advisories, err := manifest.PinDependencies(table)
	if err != nil {
		return UpdatePinsResult{}, err
	}
	logAdvisories(advisories)

	changed, err := manifest.Render()
	if err != nil {
		return UpdatePinsResult{}, err
	}

	result := UpdatePinsResult{
		Changed:    string(changed) != string(original),
		Diff:       core.UnifiedDiff(string(original), string(changed), req.ManifestPath),
		Advisories: advisories,
	}
	if !result.Changed {
		log.Info().Str("manifest", req.ManifestPath).Msg("no changes to dependency pins")
		return result, nil
	}
	if req.DryRun {
		log.Info().Msgf("changes to %s:\n%s", req.ManifestPath, result.Diff)
		return result, nil
	}

	output := req.OutputPath
	if output == "" {
		output = req.ManifestPath
	}
	if err := s.Manifests.Save(output, changed); err != nil {
		return UpdatePinsResult{}, err
	}
	log.Info().Str("manifest", output).Msg("updated dependency pins")
	return result, nil
}
