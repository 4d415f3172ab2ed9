package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Lock is the sidecar manifest written next to a saved artifact. It pins the
// artifact's checksum so later verification can detect edits or corruption.
type Lock struct {
	Artifact  string `json:"artifact"`
	Format    Format `json:"format"`
	Generated string `json:"generated"`
	SHA256    string `json:"sha256"`
	Tokens    int    `json:"tokens"`
	Merges    int    `json:"merges"`
}

// LockPath returns the sidecar path for an artifact.
func LockPath(artifactPath string) string {
	return artifactPath + ".lock.json"
}

// WriteLock checksums the artifact at path and records it in the sidecar.
func WriteLock(path string, a *Artifact) (Lock, error) {
	sum, err := fileSHA256(path)
	if err != nil {
		return Lock{}, err
	}
	lock := Lock{
		Artifact:  path,
		Format:    FormatFor(path),
		Generated: time.Now().UTC().Format(time.RFC3339),
		SHA256:    sum,
		Tokens:    len(a.Vocabulary),
		Merges:    len(a.Merges),
	}
	b, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return Lock{}, fmt.Errorf("encode lock manifest: %w", err)
	}
	if err := writeAtomic(LockPath(path), b); err != nil {
		return Lock{}, fmt.Errorf("write lock manifest: %w", err)
	}
	return lock, nil
}

// ReadLock reads the sidecar for the artifact at path. ok is false when no
// sidecar exists.
func ReadLock(path string) (lock Lock, ok bool, err error) {
	b, err := os.ReadFile(LockPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Lock{}, false, nil
		}
		return Lock{}, false, fmt.Errorf("read lock manifest: %w", err)
	}
	if err := json.Unmarshal(b, &lock); err != nil {
		return Lock{}, false, fmt.Errorf("decode lock manifest: %w", err)
	}
	return lock, true, nil
}
