package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Record is the on-disk representation of the cached token.
type Record struct {
	IGDBToken string `json:"igdbToken"`
}

// FileStore keeps the token as a JSON record in a single file.
// Writes use temp file + rename for crash safety.
type FileStore struct {
	filePath string
}

// Compile-time check to ensure FileStore implements TokenStore
var _ TokenStore = (*FileStore)(nil)

// NewFileStore creates a FileStore for the given path, creating parent directories
// with 0700 permissions if they don't exist.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{
		filePath: filePath,
	}, nil
}

// Path returns the location of the token record.
func (f *FileStore) Path() string {
	return f.filePath
}

// Load reads the token record. A missing file or an empty igdbToken yields ErrNotFound,
// unparsable content yields ErrMalformedRecord.
func (f *FileStore) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(f.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if info.Mode().Perm() != 0600 {
		slog.WarnContext(ctx, "token file has loose permissions",
			"path", f.filePath,
			"mode", fmt.Sprintf("%04o", info.Mode().Perm()))
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return "", err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("%w in %s: %w", ErrMalformedRecord, f.filePath, err)
	}

	token := strings.TrimSpace(record.IGDBToken)
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Save atomically replaces the token record and sets its permissions to 0600.
func (f *FileStore) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Record{IGDBToken: strings.TrimSpace(token)})
	if err != nil {
		return err
	}

	// Temp file in the same directory so the rename stays on one filesystem
	dir := filepath.Dir(f.filePath)
	tempFile, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(data); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempName, f.filePath); err != nil {
		return err
	}

	return os.Chmod(f.filePath, 0600)
}
