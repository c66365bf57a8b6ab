// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that must be manually managed.
// That is, the Display() function must be called whenever an updated
// progress bar should be printed.
//
// ProgressBar does not use concurrency. It is meant to be driven by the
// same loop whose progress it reports.
type ProgressBar struct {
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	status          string
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new ProgressBar that is width characters wide, reaches
// 100% after max calls to Increment(), and prints to out.
func New(out io.Writer, width, max int) *ProgressBar {
	return &ProgressBar{
		out:             out,
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		startTime:       time.Now(),
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// SetStatus sets a short message printed after the bar
func (p *ProgressBar) SetStatus(status string) {
	p.status = status
}

// String returns the current bar without terminal control sequences
func (p *ProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	fraction := 1.0
	if p.maxProgress > 0 {
		fraction = p.currentProgress / p.maxProgress
	}

	currentProg := fraction * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%v | elapsed: %v]", fraction*100,
		"%", time.Since(p.startTime).Truncate(time.Second)))

	if p.status != "" {
		p.bar.WriteString(" " + p.status)
	}
	return p.bar.String()
}

// Display prints the progress bar, overwriting the previously printed
// one.
func (p *ProgressBar) Display() {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String())
}

// Close moves the cursor past the bar
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
