// Package progress renders a single-line live counter for long scan
// phases.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/time/rate"
)

const (
	// maxLineWidth caps the status line so it never wraps and stutters
	// on narrow terminals.
	maxLineWidth = 80

	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
	eraseLine  = "\r\x1b[K"
)

// Tracker repaints one status line in place. Updates arrive from worker
// goroutines, so rendering is mutex-guarded and throttled; the final
// update of a phase always paints. A disabled tracker is a no-op, which
// is how quiet mode and non-terminal output are handled.
type Tracker struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	limiter *rate.Limiter
	label   string
}

// New returns a tracker writing to w. With enabled false every method is
// a no-op.
func New(w io.Writer, enabled bool) *Tracker {
	return &Tracker{
		w:       w,
		enabled: enabled,
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
}

// StartPhase begins a labeled phase of total items and paints the zero
// state.
func (t *Tracker) StartPhase(label string, total int) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	t.label = label
	fmt.Fprint(t.w, hideCursor)
	t.mu.Unlock()

	t.paint(0, total)
}

// Update repaints the counter. Safe to call concurrently; intermediate
// updates may be dropped to keep terminal writes cheap, the final one
// never is.
func (t *Tracker) Update(done, total int) {
	if !t.enabled {
		return
	}
	if done < total && !t.limiter.Allow() {
		return
	}
	t.paint(done, total)
}

// Finish clears the status line and restores the cursor.
func (t *Tracker) Finish() {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.w, eraseLine+showCursor)
}

func (t *Tracker) paint(done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := fmt.Sprintf("  %s %s/%s", t.label, humanize.Comma(int64(done)), humanize.Comma(int64(total)))
	fmt.Fprint(t.w, eraseLine+runewidth.Truncate(line, maxLineWidth, "..."))
}
