package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Progress reports crawl progress. On a terminal it animates a spinner whose
// suffix is the latest message; elsewhere each message is printed on its
// own line.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	running bool
}

// NewProgress creates a Progress writing to out.
func NewProgress(out io.Writer, title string) *Progress {
	p := &Progress{out: out}
	if IsTerminal(out) {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		p.spinner.Suffix = " " + title
	} else if title != "" {
		fmt.Fprintln(out, title)
	}
	return p
}

// Start begins the spinner animation.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil && !p.running {
		p.spinner.Start()
	}
	p.running = true
}

// Report shows message as the current status.
func (p *Progress) Report(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner == nil {
		fmt.Fprintln(p.out, message)
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = " " + message
	p.spinner.Unlock()
}

// Pause stops the spinner so the terminal line can be used for a prompt.
// The returned function restarts it if it was running.
func (p *Progress) Pause() (resume func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner == nil || !p.running {
		return func() {}
	}
	p.spinner.Stop()
	p.running = false
	return p.Start
}

// Stop ends the animation and prints final, if not empty.
func (p *Progress) Stop(final string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil && p.running {
		p.spinner.Stop()
	}
	p.running = false
	if final != "" {
		fmt.Fprintln(p.out, final)
	}
}
