/*
Package store provides the line-oriented persistence used for the processed-filing ledger
and the known-ticker cache.
*/
package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Lines is a flat persisted collection of text lines.
type Lines interface {
	// ReadAll returns every stored line. A store that does not exist yet is empty.
	ReadAll() ([]string, error)
	// Append durably adds one line.
	Append(line string) error
	// ReplaceAll discards the current contents and stores lines in their place.
	ReplaceAll(lines []string) error
	// ModTime reports when the contents were last written. ok is false if the store
	// does not exist.
	ModTime() (t time.Time, ok bool, err error)
}

// File is a Lines backed by a newline-delimited text file.
type File struct {
	path string
}

// NewFile returns a file store at path. The parent directory is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) ReadAll() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return lines, nil
}

func (f *File) Append(line string) error {
	if err := f.ensureDir(); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", f.path, err)
	}

	// A torn final line from an interrupted write is terminated first so the new line
	// stays separate.
	prefix, err := missingNewline(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to inspect %s: %w", f.path, err)
	}

	if _, err := file.WriteString(prefix + line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to %s: %w", f.path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync %s: %w", f.path, err)
	}
	return file.Close()
}

// ReplaceAll writes to a temporary file in the same directory and renames it over the
// old contents, so readers see either the old or the new file in full.
func (f *File) ReplaceAll(lines []string) error {
	if err := f.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", f.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write %s: %w", tmpName, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) ModTime() (time.Time, bool, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	return info.ModTime(), true, nil
}

// missingNewline returns "\n" when file is non-empty and does not end with one.
func missingNewline(file *os.File) (string, error) {
	info, err := file.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}

	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return "", err
	}
	if last[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}

func (f *File) ensureDir() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Memory is an in-process Lines. The zero value is an empty, non-existent store.
type Memory struct {
	mu      sync.Mutex
	lines   []string
	exists  bool
	modTime time.Time
	// Now stamps writes; defaults to time.Now.
	Now func() time.Time
}

// NewMemory returns a store that already exists with the given lines, last written at
// modTime.
func NewMemory(modTime time.Time, lines ...string) *Memory {
	return &Memory{lines: append([]string(nil), lines...), exists: true, modTime: modTime}
}

func (m *Memory) ReadAll() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...), nil
}

func (m *Memory) Append(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	m.touch()
	return nil
}

func (m *Memory) ReplaceAll(lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append([]string(nil), lines...)
	m.touch()
	return nil
}

func (m *Memory) ModTime() (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modTime, m.exists, nil
}

func (m *Memory) touch() {
	m.exists = true
	if m.Now != nil {
		m.modTime = m.Now()
	} else {
		m.modTime = time.Now()
	}
}
