// Package history persists interactive session history. Sessions sharing
// one file append under an advisory lock: each reads the current file,
// adds its own lines and replaces the file atomically, so no session drops
// another's entries.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// LockTimeout is the default time to wait for another session's lock.
const LockTimeout = 2 * time.Second

// Limit is the number of most recent lines kept in the file.
const Limit = 1000

const filePerms = 0o600

var (
	ErrLockTimeout  = errors.New("history lock timeout")
	ErrLockFileOpen = errors.New("failed to open history lock file")
)

type fileLock struct {
	file *os.File
}

// acquire takes an exclusive lock on path+".lock", polling until timeout.
func acquire(path string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockFileOpen, err)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{file: file}, nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		}

		time.Sleep(retryInterval)
	}
}

func (l *fileLock) release() {
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
}

// Load feeds the history file at path to read. A missing file is not an
// error.
func Load(path string, read func(io.Reader) (int, error)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("opening history: %w", err)
	}

	defer func() { _ = f.Close() }()

	_, err = read(f)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	return nil
}

// Append adds lines to the end of the history file at path, keeping at
// most Limit lines. The file is read and replaced while the lock is held,
// and the lock is always released.
func Append(path string, timeout time.Duration, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	lock, err := acquire(path, timeout)
	if err != nil {
		return err
	}

	defer lock.release()

	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading history: %w", err)
	}

	merged := append(splitLines(content), lines...)
	if len(merged) > Limit {
		merged = merged[len(merged)-Limit:]
	}

	var buf bytes.Buffer

	for _, line := range merged {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	err = atomic.WriteFile(path, &buf)
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}

func splitLines(content []byte) []string {
	text := strings.TrimRight(string(content), "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}
