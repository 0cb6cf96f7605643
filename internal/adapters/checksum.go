package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ComputeSHA256 returns the hex sha256 digest of a file.
func ComputeSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open file for hashing").
			WithCause(err)
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to hash file").
			WithCause(err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// AugmentPathWithHash inserts the first 8 hex digits of a file's sha256
// digest before its suffixes:
//
//	/datasets/replay-attack.tar.gz -> /datasets/replay-attack-a8e31cc3.tar.gz
//
// Only regular files can be augmented.
func AugmentPathWithHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("can only augment paths to files with a hash, got: %s", path))
	}
	digest, err := ComputeSHA256(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	suffix := fileSuffixes(name)
	base := strings.TrimSuffix(name, suffix)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, digest[:8], suffix)), nil
}

// fileSuffixes returns every dot-suffix of a file name, so "a.tar.gz"
// yields ".tar.gz".
func fileSuffixes(name string) string {
	trimmed := strings.TrimPrefix(name, ".")
	idx := strings.Index(trimmed, ".")
	if idx < 0 {
		return ""
	}
	return trimmed[idx:]
}
