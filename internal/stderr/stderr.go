//go:build !windows

// Package stderr captures stderr output from C libraries (ALSA, the audio
// backend) that write directly to file descriptor 2, bypassing Go's
// os.Stderr. Captured lines go to the log instead of corrupting the TUI.
package stderr

import (
	"os"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Capture is an active redirection of file descriptor 2.
type Capture struct {
	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	done       chan struct{}
	stopOnce   sync.Once
}

// Start begins capturing stderr output and forwarding it to log.
// Must be called early in main(), before any C library initialization.
// On error the program can continue without capture.
func Start(log logrus.FieldLogger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	// Save original stderr file descriptor
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		origStderr: orig,
		pipeRead:   r,
		pipeWrite:  w,
		done:       make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		forward(r, log)
	}()
	return c, nil
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible even if the TUI is running.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil || c.origStderr <= 0 {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(c.origStderr, []byte(msg))
}

// Stop restores the original stderr and waits for pending lines to be
// logged. Safe to call on a nil Capture.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		_ = syscall.Dup2(c.origStderr, int(os.Stderr.Fd()))
		_ = syscall.Close(c.origStderr)
		c.origStderr = -1

		// fd 2 no longer points at the pipe, so closing the write end ends
		// the reader.
		c.pipeWrite.Close()
		<-c.done
		c.pipeRead.Close()
	})
}
