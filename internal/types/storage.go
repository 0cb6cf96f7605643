package types

import "time"

// StorageEntry describes one resource on the remote storage server.
type StorageEntry struct {
	Name     string
	Path     string
	IsDir    bool
	Size     int64
	Created  time.Time
	Modified time.Time
}
