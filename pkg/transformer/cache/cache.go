// --- START OF FINAL REVISED FILE pkg/transformer/cache/cache.go ---
package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
)

// FileName is the default name of the response cache file.
const FileName = ".code-transformer.cache"

// SchemaVersion is the version of the on-disk layout. Files with a different
// version are discarded on Load.
const SchemaVersion = "1.0"

const (
	FormatGob     = "gob"
	FormatJSON    = "json"
	DefaultFormat = FormatGob
)

var (
	// ErrLoad indicates the cache file exists but could not be opened.
	// Corrupt or outdated files are not errors; they load as an empty cache.
	ErrLoad = errors.New("failed to load response cache")
	// ErrPersist indicates the cache could not be written.
	ErrPersist = errors.New("failed to persist response cache")
)

// Entry is one cached model response.
type Entry struct {
	Response   string    `json:"response"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"createdAt"`
	AppVersion string    `json:"appVersion"`
}

// fileHeader precedes the entries in the cache file.
type fileHeader struct {
	SchemaVersion string `json:"schemaVersion"`
	AppVersion    string `json:"appVersion"`
}

type jsonFile struct {
	Header  fileHeader       `json:"header"`
	Entries map[string]Entry `json:"entries"`
}

// Store holds raw model responses keyed by Key.
//
// Stability: Public Stable API - Implementations can be provided externally.
// Get and Put MUST be safe for concurrent use.
type Store interface {
	Load(path string) error
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
	Persist(path string) error
	Len() int
}

// Key derives the cache key for one model request. Every request parameter
// that changes the reply is part of the key.
func Key(cfg model.Config, prompt string) string {
	h := sha256.New()
	for _, part := range []string{
		cfg.Provider,
		cfg.Name,
		cfg.System,
		strconv.FormatFloat(cfg.Temperature, 'g', -1, 64),
		strconv.Itoa(cfg.MaxTokens),
		prompt,
	} {
		// Length prefixes keep ("ab","c") and ("a","bc") apart.
		fmt.Fprintf(h, "%d:%s;", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type fileStore struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	logger     *slog.Logger
	appVersion string
	format     string
}

// NewFileStore creates a file-backed Store. format is "gob" (default) or
// "json". Entries written by a different non-dev appVersion are discarded.
func NewFileStore(handler slog.Handler, appVersion, format string) Store { // minimal comment
	if handler == nil {
		handler = slog.DiscardHandler
	}
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatGob {
		format = DefaultFormat
	}
	if appVersion == "" {
		appVersion = "dev"
	}
	return &fileStore{
		entries:    make(map[string]Entry),
		logger:     slog.New(handler).With(slog.String("component", "responseCache"), slog.String("format", format)),
		appVersion: appVersion,
		format:     format,
	}
}

func (s *fileStore) compatible(version string) bool {
	return s.appVersion == "dev" || version == "dev" || version == s.appVersion
}

// Load implements Store.
func (s *fileStore) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Cache file not found, starting empty", "path", path)
			return nil
		}
		return fmt.Errorf("%w: open '%s': %w", ErrLoad, path, err)
	}
	defer file.Close()

	var header fileHeader
	var entries map[string]Entry
	var decodeErr error
	if s.format == FormatJSON {
		var data jsonFile
		if decodeErr = json.NewDecoder(file).Decode(&data); decodeErr == nil {
			header, entries = data.Header, data.Entries
		}
	} else {
		dec := gob.NewDecoder(file)
		if decodeErr = dec.Decode(&header); decodeErr == nil {
			decodeErr = dec.Decode(&entries)
		}
	}

	switch {
	case decodeErr != nil && (errors.Is(decodeErr, io.EOF) || errors.Is(decodeErr, io.ErrUnexpectedEOF)):
		s.logger.Warn("Cache file empty or truncated, starting empty", "path", path)
		return nil
	case decodeErr != nil:
		s.logger.Warn("Cache file unreadable, starting empty", "path", path, "error", decodeErr.Error())
		return nil
	case header.SchemaVersion != SchemaVersion:
		s.logger.Warn("Cache schema version mismatch, starting empty", "path", path, "file_schema", header.SchemaVersion)
		return nil
	case !s.compatible(header.AppVersion):
		s.logger.Warn("Cache written by another version, starting empty", "path", path, "file_version", header.AppVersion)
		return nil
	}

	if entries != nil {
		s.entries = entries
	}
	s.logger.Debug("Cache loaded", "path", path, "entries", len(s.entries))
	return nil
}

// Get implements Store.
func (s *fileStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.compatible(entry.AppVersion) {
		return Entry{}, false
	}
	return entry, true
}

// Put implements Store.
func (s *fileStore) Put(key string, entry Entry) {
	if entry.AppVersion == "" {
		entry.AppVersion = s.appVersion
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// Len implements Store.
func (s *fileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Persist implements Store. The file is written to a temporary sibling and
// renamed into place. An empty cache removes the file.
func (s *fileStore) Persist(path string) (err error) {
	s.mu.RLock()
	snapshot := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("Failed to remove empty cache file", "path", path, "error", rmErr.Error())
		}
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory '%s': %w", ErrPersist, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temporary file in '%s': %w", ErrPersist, dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	header := fileHeader{SchemaVersion: SchemaVersion, AppVersion: s.appVersion}
	if s.format == FormatJSON {
		enc := json.NewEncoder(tmp)
		enc.SetIndent("", "  ")
		err = enc.Encode(jsonFile{Header: header, Entries: snapshot})
	} else {
		enc := gob.NewEncoder(tmp)
		if err = enc.Encode(header); err == nil {
			err = enc.Encode(snapshot)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersist, s.format, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close '%s': %w", ErrPersist, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename to '%s': %w", ErrPersist, path, err)
	}
	s.logger.Debug("Cache persisted", "path", path, "entries", len(snapshot))
	return nil
}

// --- END OF FINAL REVISED FILE pkg/transformer/cache/cache.go ---
