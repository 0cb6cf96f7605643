package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gitlab-devtools/internal/ports"
)

// ManifestFileAdapter reads and writes manifest documents on the local
// filesystem.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("manifest file not found").
			WithCause(err)
	}
	return data, nil
}

func (a ManifestFileAdapter) Save(path string, contents []byte) error {
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest file").
			WithCause(err)
	}
	return nil
}

var _ ports.ManifestFilePort = ManifestFileAdapter{}
