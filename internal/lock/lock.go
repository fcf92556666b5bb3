// Package lock serializes store mutations across nsw processes with an advisory file lock.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

// errWouldBlock is returned by tryLock when another process holds the lock.
var errWouldBlock = errors.New("lock held by another process")

var lockSleep = time.Sleep

const defaultPollEvery = 100 * time.Millisecond

// File is an advisory lock on a path.
type File struct {
	Path      string
	Timeout   time.Duration
	PollEvery time.Duration
}

type heldLock struct {
	file *os.File
}

// With acquires the lock, runs fn, and releases the lock.
func (l File) With(fn func() error) error {
	held, err := l.acquire()
	if err != nil {
		return err
	}
	defer func() {
		_ = held.release()
	}()
	return fn()
}

// acquire opens or creates the lock file and waits for an exclusive lock.
func (l File) acquire() (*heldLock, error) {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, l.Path, err)
	}
	file, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, l.Path, err)
	}
	if err := l.wait(file); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &heldLock{file: file}, nil
}

func (l File) wait(file *os.File) error {
	poll := l.PollEvery
	if poll <= 0 {
		poll = defaultPollEvery
	}
	deadline := time.Now().Add(l.Timeout)
	for {
		err := tryLock(file)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errWouldBlock) {
			return fmt.Errorf(messages.LockFmt, l.Path, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.LockTimeoutFmt, l.Timeout)
		}
		lockSleep(poll)
	}
}

// release unlocks and closes the file lock.
func (h *heldLock) release() error {
	if h == nil || h.file == nil {
		return nil
	}
	if err := unlock(h.file); err != nil {
		_ = h.file.Close()
		return err
	}
	return h.file.Close()
}
