package table

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrWrite wraps every failure to create or write an output file.
var ErrWrite = errors.New("writing table")

// WriteFile writes t to path. The data goes to a temporary file in the same
// directory which is then renamed over path.
func WriteFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrWrite, err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(t.String()); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: renaming: %w", ErrWrite, err)
	}
	return nil
}

// ReadFile parses a file produced by WriteFile.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("reading header: empty file")
	}
	t := New(strings.Split(scanner.Text(), Separator))
	for scanner.Scan() {
		if err := t.Append(strings.Split(scanner.Text(), Separator)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return t, nil
}
