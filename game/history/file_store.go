package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore implements Store using one JSON file per game
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file-backed store, creating dir if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Insert writes the record. The file is created exclusively, so two
// concurrent inserts for one game cannot both succeed.
func (fs *FileStore) Insert(_ context.Context, rec *MatchRecord) error {
	path, err := fs.getFilePath(rec.GameID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return ErrAlreadyRecorded
		}
		return fmt.Errorf("failed to create match file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write match file: %w", err)
	}
	return f.Close()
}

func (fs *FileStore) Get(_ context.Context, gameID string) (*MatchRecord, error) {
	path, err := fs.getFilePath(gameID)
	if err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return readRecord(path)
}

func (fs *FileStore) List(_ context.Context, limit int) ([]*MatchRecord, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var out []*MatchRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := readRecord(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			// Skip unreadable files
			continue
		}
		out = append(out, rec)
	}

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (fs *FileStore) Close() error { return nil }

func readRecord(path string) (*MatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}

	var rec MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
	}
	return &rec, nil
}

// getFilePath rejects IDs that could escape the history directory
func (fs *FileStore) getFilePath(gameID string) (string, error) {
	if gameID == "" || gameID != filepath.Base(gameID) || strings.ContainsAny(gameID, `/\`) || strings.HasPrefix(gameID, ".") {
		return "", ErrInvalidGameID
	}
	return filepath.Join(fs.dir, gameID+".json"), nil
}
