package ports

import "gitlab-devtools/internal/types"

// PinSourcePort loads constraint profiles with desired dependency pins.
type PinSourcePort interface {
	LoadProfile(path string) (types.PinProfile, error)
}

// ManifestFilePort reads and writes local manifest documents.
type ManifestFilePort interface {
	Load(path string) ([]byte, error)
	Save(path string, contents []byte) error
}
