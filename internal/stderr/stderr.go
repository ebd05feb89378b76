//go:build !windows

// Package stderr captures output that C audio libraries (ALSA through the
// speaker backend) write straight to file descriptor 2, and forwards it to
// the logger so it cannot garble the terminal status line.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Capture redirects fd 2 into a pipe until Stop.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// Start begins forwarding stderr lines to log. The logger must not write
// to stderr itself.
func Start(log logrus.FieldLogger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	entry := log.WithField("source", "stderr")
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				entry.Warn(line)
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes to the real stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores stderr and waits for pending lines to be forwarded.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.w.Close()
	<-c.done
	c.r.Close()
}
