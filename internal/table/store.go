package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store places region tables under an output directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed. A leading "~/" is expanded to the
// user's home directory.
func NewStore(dir string) (*Store, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %w", ErrWrite, err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %w", ErrWrite, err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the resolved output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a region. pattern may contain "{region}".
func (s *Store) Path(pattern, region string) string {
	name := strings.ReplaceAll(pattern, "{region}", sanitize(region))
	return filepath.Join(s.dir, name)
}

// Save writes t for region, creating intermediate directories.
func (s *Store) Save(pattern, region string, t *Table) (string, error) {
	path := s.Path(pattern, region)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("%w: creating directory: %w", ErrWrite, err)
	}
	if err := WriteFile(path, t); err != nil {
		return "", err
	}
	return path, nil
}

// sanitize keeps a region name from escaping its directory.
func sanitize(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(name)
}
