package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"capeval/pkg/task"
)

// ReopenFunc re-acquires an input stream after the previous one hit EOF.
type ReopenFunc func() (io.Reader, error)

// ManualSource obtains outputs interactively: it prints the task prompt to
// the status writer and reads one pasted output, terminated by EOF. After
// each read the input stream is reopened (from /dev/tty on POSIX terminals)
// so the next paste gets a fresh EOF. Surrounding newlines are stripped
// from the pasted text; everything else is kept verbatim.
type ManualSource struct {
	// MaxAttempts, when positive, is shown in the attempt prompt.
	MaxAttempts int

	in        io.Reader
	status    io.Writer
	reopen    ReopenFunc
	exhausted bool
}

// NewManualSource creates a manual source reading from in and prompting on
// status. reopen may be nil, in which case the source becomes unusable once
// in hits EOF.
func NewManualSource(in io.Reader, status io.Writer, reopen ReopenFunc) *ManualSource {
	return &ManualSource{in: in, status: status, reopen: reopen}
}

// StdinManualSource creates a manual source wired to the process stdin and
// stderr, reopening from /dev/tty between pastes.
func StdinManualSource() *ManualSource {
	return NewManualSource(os.Stdin, os.Stderr, func() (io.Reader, error) {
		return os.Open("/dev/tty")
	})
}

func (s *ManualSource) Output(_ context.Context, t task.Task, attempt int) (string, error) {
	if s.exhausted {
		return "", fmt.Errorf("task %s attempt %d: interactive input exhausted; use --mode=from-file", t.ID, attempt)
	}

	if attempt == 1 {
		fmt.Fprintln(s.status, strings.Repeat("=", 72))
		fmt.Fprintf(s.status, "Task %s (%s):\n%s\n", t.ID, t.Kind, t.Prompt)
	}
	if s.MaxAttempts > 0 {
		fmt.Fprintf(s.status, "\nAttempt %d/%d. Paste output, then press Enter and Ctrl-D:\n", attempt, s.MaxAttempts)
	} else {
		fmt.Fprintf(s.status, "\nAttempt %d. Paste output, then press Enter and Ctrl-D:\n", attempt)
	}

	data, err := io.ReadAll(s.in)
	if err != nil {
		return "", fmt.Errorf("read pasted output for task %s attempt %d: %w", t.ID, attempt, err)
	}

	// Re-acquire the terminal so the next paste gets its own EOF. The
	// previous stream is done; close it before swapping so a long session
	// doesn't accumulate tty handles.
	if s.reopen != nil {
		if next, err := s.reopen(); err == nil {
			if c, ok := s.in.(io.Closer); ok {
				c.Close()
			}
			s.in = next
		} else {
			s.exhausted = true
			fmt.Fprintln(s.status, "note: terminal unavailable; further attempts need --mode=from-file")
		}
	} else {
		s.exhausted = true
	}

	return strings.Trim(string(data), "\n"), nil
}
