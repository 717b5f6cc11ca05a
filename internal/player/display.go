package player

import (
	"fmt"
	"io"
	"sync"
)

// TextDisplay writes the surface state as lines of text.
type TextDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextDisplay creates a display writing to w.
func NewTextDisplay(w io.Writer) *TextDisplay {
	return &TextDisplay{w: w}
}

func (d *TextDisplay) ShowTitle(name string) {
	d.printf("== %s ==\n", name)
}

func (d *TextDisplay) ShowMetadata(text string) {
	d.printf("   %s\n", text)
}

func (d *TextDisplay) ShowPlaying(playing bool) {
	if playing {
		d.printf("   [reproduciendo]\n")
		return
	}
	d.printf("   [en pausa]\n")
}

func (d *TextDisplay) printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintf(d.w, format, args...)
}
