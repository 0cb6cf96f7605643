package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab-devtools/internal/app"
	"gitlab-devtools/internal/types"
)

type releaseOptions struct {
	Project     string
	TagName     string
	Bump        string
	TagComments string
	Profile     string
	DryRun      bool
}

func newReleaseCommand() *cobra.Command {
	opts := releaseOptions{}
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Tag a new release of a project, pinning its dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project path with namespace (e.g. group/name)")
	cmd.Flags().StringVar(&opts.TagName, "tag", "", "Explicit release tag (v-prefixed); overrides --bump")
	cmd.Flags().StringVar(&opts.Bump, "bump", "patch", "Version part to bump (major, minor, or patch)")
	cmd.Flags().StringVar(&opts.TagComments, "comments", "", "Release tag description")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "Constraint profile with desired dependency pins")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log planned changes without touching the project")
	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	_ = viper.BindPFlag("profile", cmd.Flags().Lookup("profile"))
	return cmd
}

func runRelease(ctx context.Context, cmd *cobra.Command, opts releaseOptions) error {
	bump, err := parseBump(resolveString(cmd, opts.Bump, "bump", "bump"))
	if err != nil {
		return err
	}
	service := newAppService()
	result, err := service.Release(ctx, app.ReleaseRequest{
		Remote:      remoteConfig(),
		Project:     resolveString(cmd, opts.Project, "project", "project"),
		TagName:     opts.TagName,
		Bump:        bump,
		TagComments: opts.TagComments,
		ProfilePath: resolveString(cmd, opts.Profile, "profile", "profile"),
		DryRun:      opts.DryRun,
	})
	if err != nil {
		return err
	}
	if result.DryRun {
		fmt.Printf("would release: %s\n", result.TagName)
		return nil
	}
	fmt.Printf("released: %s (pipeline %d)\n", result.TagName, result.PipelineID)
	return nil
}

func parseBump(value string) (types.Bump, error) {
	switch types.Bump(value) {
	case types.BumpMajor:
		return types.BumpMajor, nil
	case types.BumpMinor:
		return types.BumpMinor, nil
	case types.BumpPatch, "":
		return types.BumpPatch, nil
	}
	return "", fmt.Errorf("unknown bump %q (want major, minor, or patch)", value)
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetString(key); configured != "" {
		return configured
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}
