package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// FilesystemBackend stores one JSON file per month under
// <root>/YYYY/YYYY-MM.json, plus summary.json for the consolidated row.
type FilesystemBackend struct {
	root      string
	writeLock sync.Mutex
}

// NewFilesystemBackend creates a filesystem-based cache backend. An empty
// root falls back to $SALESOPS_CACHE_DIR, then ~/.salesops/cache.
func NewFilesystemBackend(root string) *FilesystemBackend {
	if root == "" {
		root = os.Getenv(core.CacheDirEnvVar)
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root = filepath.Join(home, ".salesops", "cache")
	}
	return &FilesystemBackend{root: root}
}

// Path returns the filesystem path for the given month key.
func (b *FilesystemBackend) Path(key monthkey.Key) string {
	return filepath.Join(b.root, key.Start().Format("2006"), key.String()+".json")
}

func (b *FilesystemBackend) summaryPath() string {
	return filepath.Join(b.root, "summary.json")
}

// Read returns the stored entry for key, or nil if absent. A file that fails
// to decode is removed and reported as absent.
func (b *FilesystemBackend) Read(key monthkey.Key) (*MonthEntry, error) {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		return nil, nil
	}

	var entry MonthEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(b.Path(key))
		return nil, nil
	}
	if entry.Key != key {
		// File content does not match its name; treat as corrupt.
		os.Remove(b.Path(key))
		return nil, nil
	}
	return &entry, nil
}

// Write persists the entry atomically using temp file + rename.
func (b *FilesystemBackend) Write(entry *MonthEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.writeFile(b.Path(entry.Key), data)
}

// Delete removes the entry file for key, if any.
func (b *FilesystemBackend) Delete(key monthkey.Key) error {
	err := os.Remove(b.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys lists months present on disk by walking the year directories.
func (b *FilesystemBackend) Keys() ([]monthkey.Key, error) {
	keys := make([]monthkey.Key, 0)

	yearDirs, err := os.ReadDir(b.root)
	if err != nil {
		if os.IsNotExist(err) {
			return keys, nil
		}
		return nil, err
	}

	for _, yearDir := range yearDirs {
		if !yearDir.IsDir() || len(yearDir.Name()) != 4 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(b.root, yearDir.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			name := file.Name()
			if filepath.Ext(name) != ".json" {
				continue
			}
			key, err := monthkey.Parse(strings.TrimSuffix(name, ".json"))
			if err != nil {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Clear removes the whole cache directory.
func (b *FilesystemBackend) Clear() error {
	err := os.RemoveAll(b.root)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadConsolidated returns the stored consolidated summary or nil.
func (b *FilesystemBackend) ReadConsolidated() (*ConsolidatedSummary, error) {
	data, err := os.ReadFile(b.summaryPath())
	if err != nil {
		return nil, nil
	}
	var s ConsolidatedSummary
	if err := json.Unmarshal(data, &s); err != nil {
		os.Remove(b.summaryPath())
		return nil, nil
	}
	return &s, nil
}

// WriteConsolidated replaces the stored consolidated summary.
func (b *FilesystemBackend) WriteConsolidated(summary *ConsolidatedSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return b.writeFile(b.summaryPath(), data)
}

func (b *FilesystemBackend) writeFile(path string, data []byte) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
