// Package store lays out the run's artifact tree and owns the cache
// contract for externally produced files: a path that exists and is
// non-empty is trusted as a valid artifact and is never regenerated.
// That contract is what makes interrupted runs cheap to resume.
package store

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// Store roots one run's output below <root>/datas/<YYYY_MM_DD>/.
type Store struct {
	root    string
	dataDir string
}

func Open(root string, now time.Time) (*Store, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	dataDir := filepath.Join(root, "datas", now.Format("2006_01_02"))
	if err := os.MkdirAll(dataDir, 0o777); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logDir := filepath.Join(root, "logs")
	if err := os.MkdirAll(logDir, 0o777); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	return &Store{root: root, dataDir: dataDir}, nil
}

// directory shared by all items of this run
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) LogDir() string {
	return filepath.Join(s.root, "logs")
}

// path used to serialize concurrent runs over the same tree
func (s *Store) LockPath() string {
	return filepath.Join(s.root, "run.lock")
}

// ItemDir returns (and creates) the per-item directory. The key is the
// slugified item name, or an 8-hex-digit digest of the text when the
// item is unnamed.
func (s *Store) ItemDir(name, text string) (string, error) {
	key := Slugify(name)
	if key == "" {
		key = TextKey(text)
	}

	dir := filepath.Join(s.dataDir, key)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", fmt.Errorf("create item dir: %w", err)
	}
	return dir, nil
}

// Cached probes prefix+ext for each extension and returns the first
// path holding a non-empty file. Zero-size files are not cache-valid;
// they are typically the residue of a crash mid-write.
func Cached(prefix string, exts ...string) (string, bool) {
	for _, ext := range exts {
		path := prefix + ext
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > 0 {
			return path, true
		}
	}
	return "", false
}

// Slugify keeps only letters and digits, dropping everything else.
func Slugify(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TextKey derives a stable directory key for unnamed items.
func TextKey(text string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%x", sum)[:8]
}
