// Package progress draws a status spinner on stderr while clouds are queried.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner redraws "<frame> <message>" on one line until stopped.
// It is inert when the writer is not a terminal.
type Spinner struct {
	mu       sync.Mutex
	msg      string
	frames   []string
	interval time.Duration
	out      io.Writer
	ansi     bool
	enabled  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	active   bool
}

// Option configures a Spinner.
type Option func(*Spinner)

// WithInterval sets the redraw interval.
func WithInterval(d time.Duration) Option { return func(s *Spinner) { s.interval = d } }

// WithANSI forces ANSI escape sequences on or off.
func WithANSI(enabled bool) Option { return func(s *Spinner) { s.ansi = enabled } }

// WithEnabled overrides terminal detection.
func WithEnabled(enabled bool) Option { return func(s *Spinner) { s.enabled = enabled } }

// New creates a spinner writing to out, os.Stderr when nil.
func New(out io.Writer, message string, opts ...Option) *Spinner {
	if out == nil {
		out = os.Stderr
	}
	tty := isTerminal(out)
	s := &Spinner{
		msg:      message,
		interval: 90 * time.Millisecond,
		out:      out,
		ansi:     tty,
		enabled:  tty,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ansi {
		s.frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	} else {
		s.frames = []string{"-", "\\", "|", "/"}
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Start begins drawing. It is ignored while the spinner is running; a
// stopped spinner can be started again.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || !s.enabled {
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	if s.ansi {
		fmt.Fprint(s.out, "\x1b[?25l")
	}
	go s.run(s.stopCh, s.doneCh)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		s.mu.Lock()
		msg := s.msg
		s.mu.Unlock()
		frame := s.frames[i%len(s.frames)]
		if s.ansi {
			fmt.Fprintf(s.out, "\r\x1b[2K\x1b[36m%s\x1b[0m %s", frame, msg)
		} else {
			fmt.Fprintf(s.out, "\r%s %s", frame, msg)
		}

		select {
		case <-stop:
			if s.ansi {
				fmt.Fprint(s.out, "\r\x1b[2K\x1b[?25h")
			} else {
				fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len(msg)+2)+"\r")
			}
			return
		case <-ticker.C:
		}
	}
}

// SetMessage replaces the text after the frame.
func (s *Spinner) SetMessage(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = m
}

// Stop clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()
	<-done
}

// StopWithMessage stops and prints msg on its own line.
func (s *Spinner) StopWithMessage(msg string) {
	s.Stop()
	if strings.TrimSpace(msg) != "" {
		fmt.Fprintln(s.out, msg)
	}
}
