package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab-devtools/internal/app"
)

type updatePinsOptions struct {
	Manifest string
	Profile  string
	Output   string
	DryRun   bool
}

func newUpdatePinsCommand() *cobra.Command {
	opts := updatePinsOptions{}
	cmd := &cobra.Command{
		Use:   "update-pins",
		Short: "Rewrite a local manifest's dependency pins from a constraint profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdatePins(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "pyproject.toml", "Manifest file to update")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "Constraint profile with desired dependency pins")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the result here instead of in place")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the diff without writing")
	_ = viper.BindPFlag("profile", cmd.Flags().Lookup("profile"))
	return cmd
}

func runUpdatePins(cmd *cobra.Command, opts updatePinsOptions) error {
	service := newAppService()
	result, err := service.UpdatePins(app.UpdatePinsRequest{
		ManifestPath: opts.Manifest,
		ProfilePath:  resolveString(cmd, opts.Profile, "profile", "profile"),
		OutputPath:   opts.Output,
		DryRun:       opts.DryRun,
	})
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Println("pins already up to date")
		return nil
	}
	if opts.DryRun {
		fmt.Print(result.Diff)
		return nil
	}
	fmt.Printf("updated pins in %s\n", opts.Manifest)
	return nil
}
