package adapters

import (
	"context"
	"os"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/types"
)

// ProfileSourceAdapter loads constraint profiles from YAML files.
type ProfileSourceAdapter struct{}

func NewProfileSourceAdapter() ProfileSourceAdapter {
	return ProfileSourceAdapter{}
}

func (a ProfileSourceAdapter) LoadProfile(path string) (types.PinProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PinProfile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("constraint profile not found").
			WithCause(err)
	}
	var profile types.PinProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return types.PinProfile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse constraint profile yaml").
			WithCause(err)
	}
	ctx := context.Background()
	assert.NotEmpty(ctx, profile.Name, "profile name must be set")
	if len(profile.Pins) == 0 {
		return types.PinProfile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("constraint profile has no pins")
	}
	return profile, nil
}

var _ ports.PinSourcePort = ProfileSourceAdapter{}
