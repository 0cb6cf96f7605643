package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gitlab-devtools/internal/adapters"
	"gitlab-devtools/internal/types"
)

// StorageRootFor maps the dav-area flag to the server-side root directory.
// The private area holds artifacts that must not be world-readable.
func StorageRootFor(private bool) string {
	if private {
		return "/private-upload"
	}
	return "/public-upload"
}

// StorageList returns the entries directly under a remote directory,
// directories first, each group sorted by name. Listing a file path
// returns that file's own entry.
func (s Service) StorageList(ctx context.Context, req StorageListRequest) ([]types.StorageEntry, error) {
	client := s.NewStorage(req.Storage)
	entries, err := client.List(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		// depth-1 listings drop the target's own entry, so an empty result
		// is either an empty directory or a file
		entry, err := client.Info(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		if !entry.IsDir {
			return []types.StorageEntry{entry}, nil
		}
		return nil, nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// StorageMakeDirs creates a remote directory and every missing parent,
// checking each path segment from the root down.
func (s Service) StorageMakeDirs(ctx context.Context, req StorageMakeDirsRequest) (StorageMakeDirsResult, error) {
	client := s.NewStorage(req.Storage)

	target := path.Clean("/" + strings.Trim(req.Path, "/"))
	if target == "/" || target == "." {
		return StorageMakeDirsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("a non-root directory path is required")
	}

	var result StorageMakeDirsResult
	partial := ""
	for _, segment := range strings.Split(strings.Trim(target, "/"), "/") {
		partial = partial + "/" + segment
		exists, err := client.Check(ctx, partial)
		if err != nil {
			return StorageMakeDirsResult{}, err
		}
		if exists {
			continue
		}
		log.Info().Str("path", partial).Msg("creating remote directory")
		if err := client.MkDir(ctx, partial); err != nil {
			return StorageMakeDirsResult{}, err
		}
		result.Created = append(result.Created, partial)
	}
	result.Existed = len(result.Created) == 0
	return result, nil
}

// StorageRemoveTree deletes a remote file or directory tree. Without
// Execute the call only reports what would be removed.
func (s Service) StorageRemoveTree(ctx context.Context, req StorageRemoveTreeRequest) (StorageRemoveTreeResult, error) {
	client := s.NewStorage(req.Storage)

	result := StorageRemoveTreeResult{URL: client.ResourceURL(req.Path)}
	exists, err := client.Check(ctx, req.Path)
	if err != nil {
		return StorageRemoveTreeResult{}, err
	}
	result.Existed = exists
	if !exists {
		log.Warn().Str("url", result.URL).Msg("resource does not exist, nothing to remove")
		return result, nil
	}
	if !req.Execute {
		log.Info().Str("url", result.URL).Msg("would remove resource (pass --execute to remove)")
		return result, nil
	}
	log.Info().Str("url", result.URL).Msg("removing resource")
	if err := client.RemoveAll(ctx, req.Path); err != nil {
		return StorageRemoveTreeResult{}, err
	}
	result.Removed = true
	return result, nil
}

// StorageUpload plans and optionally executes the transfer of local files
// or directory trees to a remote directory. Directories are walked
// recursively and recreated remotely. With Checksum set, each file name is
// augmented with a short digest of its contents before upload.
func (s Service) StorageUpload(ctx context.Context, req StorageUploadRequest) (StorageUploadResult, error) {
	client := s.NewStorage(req.Storage)

	remoteDir := "/" + strings.Trim(req.Remote, "/")
	exists, err := client.Check(ctx, remoteDir)
	if err != nil {
		return StorageUploadResult{}, err
	}
	if !exists {
		return StorageUploadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("remote directory %q does not exist (create it with makedirs first)", remoteDir))
	}

	actions, err := planUploads(req.Locals, remoteDir, req.Checksum)
	if err != nil {
		return StorageUploadResult{}, err
	}
	for _, action := range actions {
		if action.Dir {
			log.Info().Str("remote", action.Remote).Bool("execute", req.Execute).Msg("mkdir")
		} else {
			log.Info().Str("local", action.Local).Str("remote", client.ResourceURL(action.Remote)).
				Bool("execute", req.Execute).Msg("upload")
		}
	}
	if !req.Execute {
		return StorageUploadResult{Actions: actions}, nil
	}

	for _, action := range actions {
		if action.Dir {
			if err := client.MkDir(ctx, action.Remote); err != nil {
				return StorageUploadResult{}, err
			}
			continue
		}
		if err := client.UploadFile(ctx, action.Local, action.Remote); err != nil {
			return StorageUploadResult{}, err
		}
	}
	return StorageUploadResult{Actions: actions, Executed: true}, nil
}

// planUploads expands the local paths into an ordered action list, parents
// before children so directory creations precede the uploads into them.
func planUploads(locals []string, remoteDir string, checksum bool) ([]StorageUploadAction, error) {
	var actions []StorageUploadAction
	for _, local := range locals {
		info, err := os.Stat(local)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("cannot access local path %q", local)).
				WithCause(err)
		}
		if !info.IsDir() {
			remote, err := remoteFileName(local, remoteDir, checksum)
			if err != nil {
				return nil, err
			}
			actions = append(actions, StorageUploadAction{Local: local, Remote: remote})
			continue
		}

		base := path.Join(remoteDir, filepath.Base(local))
		actions = append(actions, StorageUploadAction{Remote: base, Dir: true})
		err = filepath.WalkDir(local, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == local {
				return nil
			}
			rel, err := filepath.Rel(local, p)
			if err != nil {
				return err
			}
			remote := path.Join(base, filepath.ToSlash(rel))
			if entry.IsDir() {
				actions = append(actions, StorageUploadAction{Remote: remote, Dir: true})
				return nil
			}
			if checksum {
				remote, err = remoteFileName(p, path.Dir(remote), true)
				if err != nil {
					return err
				}
			}
			actions = append(actions, StorageUploadAction{Local: p, Remote: remote})
			return nil
		})
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("cannot walk local directory %q", local)).
				WithCause(err)
		}
	}
	return actions, nil
}

func remoteFileName(local string, remoteDir string, checksum bool) (string, error) {
	name := filepath.Base(local)
	if checksum {
		augmented, err := adapters.AugmentPathWithHash(local)
		if err != nil {
			return "", err
		}
		name = filepath.Base(augmented)
	}
	return path.Join(remoteDir, name), nil
}
