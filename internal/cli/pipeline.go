package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab-devtools/internal/app"
)

type pipelineWaitOptions struct {
	Project    string
	PipelineID int
}

func newPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Operations on continuous-integration pipelines",
	}
	cmd.AddCommand(newPipelineWaitCommand())
	return cmd
}

func newPipelineWaitCommand() *cobra.Command {
	opts := pipelineWaitOptions{}
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until a pipeline finishes, failing if it does not succeed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineWait(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project path with namespace (e.g. group/name)")
	cmd.Flags().IntVar(&opts.PipelineID, "pipeline", 0, "Pipeline ID to wait for")
	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	return cmd
}

func runPipelineWait(cmd *cobra.Command, opts pipelineWaitOptions) error {
	service := newAppService()
	result, err := service.WaitPipeline(cmd.Context(), app.WaitPipelineRequest{
		Remote:     remoteConfig(),
		Project:    resolveString(cmd, opts.Project, "project", "project"),
		PipelineID: opts.PipelineID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("pipeline %d: %s\n", opts.PipelineID, result.Status)
	return nil
}
