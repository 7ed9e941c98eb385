package log

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RotatingFile is an io.WriteCloser over a log file that is rotated once it
// would grow past maxSize bytes. Rotated files are kept as path.1 (newest)
// through path.<maxBackups> (oldest).
type RotatingFile struct {
	mu sync.Mutex

	path       string
	maxSize    int64
	maxBackups int

	file *os.File
	size int64
}

// NewRotatingFile opens path for appending, creating it and its directory
// if needed. A maxBackups of zero discards the old file on rotation.
func NewRotatingFile(path string, maxSize int64, maxBackups int) (*RotatingFile, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("log file %s: max size must be positive", path)
	}
	if maxBackups < 0 {
		maxBackups = 0
	}

	rf := &RotatingFile{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Path returns the active log file path.
func (rf *RotatingFile) Path() string {
	return rf.path
}

func (rf *RotatingFile) backup(n int) string {
	return fmt.Sprintf("%s.%d", rf.path, n)
}

func (rf *RotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	// Logs may carry report paths and user names: owner only.
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	rf.file = f
	rf.size = info.Size()
	return nil
}

// Write implements io.Writer. A single write larger than maxSize still goes
// to a fresh file whole.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, fs.ErrClosed
	}
	if rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize {
		if err := rf.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// Rotate forces a rotation.
func (rf *RotatingFile) Rotate() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return fs.ErrClosed
	}
	return rf.rotate()
}

// rotate shifts the backups along and reopens path. Must be called with mu
// held.
func (rf *RotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		return err
	}
	rf.file = nil

	if rf.maxBackups == 0 {
		if err := os.Remove(rf.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return rf.open()
	}

	if err := os.Remove(rf.backup(rf.maxBackups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove oldest backup: %w", err)
	}
	for i := rf.maxBackups - 1; i >= 1; i-- {
		if err := os.Rename(rf.backup(i), rf.backup(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("shift backup %d: %w", i, err)
		}
	}
	if err := os.Rename(rf.path, rf.backup(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rename current log: %w", err)
	}

	return rf.open()
}

// Close implements io.Closer.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
