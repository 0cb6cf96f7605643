package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlab-devtools/internal/app"
)

type davOptions struct {
	Private bool
}

func newDavCommand() *cobra.Command {
	opts := davOptions{}
	cmd := &cobra.Command{
		Use:   "dav",
		Short: "Manage content on the remote storage server",
	}
	cmd.PersistentFlags().BoolVar(&opts.Private, "private", false, "Work on the private upload area")
	cmd.AddCommand(newDavListCommand(&opts))
	cmd.AddCommand(newDavMakeDirsCommand(&opts))
	cmd.AddCommand(newDavRmTreeCommand(&opts))
	cmd.AddCommand(newDavUploadCommand(&opts))
	return cmd
}

func newDavListCommand(dav *davOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list PATH",
		Short: "List remote directory contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			entries, err := service.StorageList(cmd.Context(), app.StorageListRequest{
				Storage: storageConfig(dav.Private),
				Path:    args[0],
			})
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if entry.IsDir {
					fmt.Printf("%s/\n", entry.Name)
					continue
				}
				fmt.Printf("%s\t%d\n", entry.Name, entry.Size)
			}
			return nil
		},
	}
}

func newDavMakeDirsCommand(dav *davOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "makedirs PATH",
		Short: "Create a remote directory and all missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			result, err := service.StorageMakeDirs(cmd.Context(), app.StorageMakeDirsRequest{
				Storage: storageConfig(dav.Private),
				Path:    args[0],
			})
			if err != nil {
				return err
			}
			if result.Existed {
				fmt.Printf("already exists: %s\n", args[0])
				return nil
			}
			for _, created := range result.Created {
				fmt.Printf("created: %s\n", created)
			}
			return nil
		},
	}
}

func newDavRmTreeCommand(dav *davOptions) *cobra.Command {
	execute := false
	cmd := &cobra.Command{
		Use:   "rmtree PATH",
		Short: "Remove a remote file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			result, err := service.StorageRemoveTree(cmd.Context(), app.StorageRemoveTreeRequest{
				Storage: storageConfig(dav.Private),
				Path:    args[0],
				Execute: execute,
			})
			if err != nil {
				return err
			}
			switch {
			case !result.Existed:
				fmt.Printf("not found: %s\n", result.URL)
			case result.Removed:
				fmt.Printf("removed: %s\n", result.URL)
			default:
				fmt.Printf("would remove: %s\n", result.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually remove instead of only reporting")
	return cmd
}

func newDavUploadCommand(dav *davOptions) *cobra.Command {
	execute := false
	checksum := false
	cmd := &cobra.Command{
		Use:   "upload LOCAL... REMOTE",
		Short: "Upload local files or directories to a remote directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			result, err := service.StorageUpload(cmd.Context(), app.StorageUploadRequest{
				Storage:  storageConfig(dav.Private),
				Locals:   args[:len(args)-1],
				Remote:   args[len(args)-1],
				Execute:  execute,
				Checksum: checksum,
			})
			if err != nil {
				return err
			}
			if !result.Executed {
				fmt.Printf("planned %d actions (pass --execute to upload)\n", len(result.Actions))
				return nil
			}
			fmt.Printf("uploaded %d actions\n", len(result.Actions))
			return nil
		},
	}
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually transfer instead of only reporting")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "Augment uploaded file names with a content digest")
	return cmd
}
