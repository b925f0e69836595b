package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// activityFrames walk a block around the quadrants of a cell.
var activityFrames = []string{"▖", "▘", "▝", "▗"}

var styleActivity = lipgloss.NewStyle().Foreground(colorAccent)

// activity animates a single status line while a board operation runs.
// It draws nothing unless w is a terminal, so piped output stays clean.
type activity struct {
	w       io.Writer
	animate bool

	mu    sync.Mutex
	label string
	drawn int // width of the last drawn line

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// startActivity shows label on w until Stop is called or ctx is done.
func startActivity(ctx context.Context, w io.Writer, label string) *activity {
	a := newActivity(w, label, isTerminal(w))
	a.run(ctx, 100*time.Millisecond)
	return a
}

func newActivity(w io.Writer, label string, animate bool) *activity {
	return &activity{
		w:       w,
		animate: animate,
		label:   label,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (a *activity) run(ctx context.Context, every time.Duration) {
	if !a.animate {
		close(a.done)
		return
	}
	go func() {
		defer close(a.done)
		tick := time.NewTicker(every)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-ctx.Done():
				a.clear()
				return
			case <-a.stop:
				return
			case <-tick.C:
				a.draw(activityFrames[frame%len(activityFrames)])
			}
		}
	}()
}

// Set replaces the label shown on the next frame.
func (a *activity) Set(label string) {
	a.mu.Lock()
	a.label = label
	a.mu.Unlock()
}

// Stop ends the animation and erases the line. It is safe to call more
// than once.
func (a *activity) Stop() {
	a.once.Do(func() { close(a.stop) })
	<-a.done
	a.clear()
}

func (a *activity) draw(frame string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	line := frame + " " + a.label
	pad := max(a.drawn-len(line), 0)
	fmt.Fprintf(a.w, "\r%s %s%s", styleActivity.Render(frame), styleMuted.Render(a.label), strings.Repeat(" ", pad))
	a.drawn = len(line)
}

func (a *activity) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.drawn == 0 {
		return
	}
	fmt.Fprintf(a.w, "\r%s\r", strings.Repeat(" ", a.drawn))
	a.drawn = 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
