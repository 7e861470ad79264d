package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	mib          = 1024 * 1024
	maxBarWidth  = 40
	minBarWidth  = 10
	lineOverhead = 60
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Human рисует полосу прогресса и итоговые строки
type Human struct {
	mu      sync.Mutex
	w       io.Writer
	tty     bool
	bar     bprogress.Model
	pass    int
	total   int
	label   string
	size    uint64
	written uint64
	rate    float64
}

// NewHuman writes to w; the bar is redrawn in place only when w is a terminal.
func NewHuman(w io.Writer) *Human {
	h := &Human{w: w}
	width := maxBarWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.tty = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols-lineOverhead < width {
			width = max(cols-lineOverhead, minBarWidth)
		}
	}
	h.bar = bprogress.New(
		bprogress.WithDefaultGradient(),
		bprogress.WithWidth(width),
		bprogress.WithoutPercentage(),
	)
	return h
}

func (h *Human) Report(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := ev.(type) {
	case Start:
		h.size = e.FileSizeBytes
		_, err := fmt.Fprintf(h.w, "Starting secure wipe using %s algorithm (%d passes)\nFile size: %.2f MB\nBuffer size: %d KB\n\n",
			e.Algorithm, e.TotalPasses, float64(e.FileSizeBytes)/mib, e.BufferSizeKB)
		return err
	case PassStart:
		h.pass, h.total, h.label = e.Pass, e.TotalPasses, e.Pattern
		h.written, h.rate = 0, 0
		if h.tty {
			return h.draw("")
		}
		return nil
	case Progress:
		h.written, h.size, h.rate = e.BytesWritten, e.TotalBytes, e.BytesPerSecond
		if h.tty {
			return h.draw("")
		}
		return nil
	case PassComplete:
		h.written = h.size
		if err := h.draw("Completed"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(h.w)
		return err
	case Complete:
		_, err := fmt.Fprintf(h.w, "\n%s\nTotal time: %.2f seconds\nAverage throughput: %.2f MB/s\n",
			successStyle.Render("Secure wipe completed successfully!"), e.TotalTimeSeconds, e.AverageThroughputMBs)
		return err
	case Error:
		prefix := ""
		if h.tty && h.pass > 0 {
			prefix = "\n"
		}
		_, err := fmt.Fprintf(h.w, "%s%s\n", prefix, errorStyle.Render("Error: "+e.Message))
		return err
	case Info:
		_, err := fmt.Fprintln(h.w, e.Message)
		return err
	case DemoFileCreated:
		_, err := fmt.Fprintf(h.w, "Demo file created: %s (%d MB)\n", e.Path, e.SizeMB)
		return err
	case DemoFileCreating:
		if !h.tty {
			return nil
		}
		_, err := fmt.Fprintf(h.w, "\rCreating %s %5.1f%%", h.bar.ViewAs(e.Percent/100), e.Percent)
		return err
	default:
		return nil
	}
}

func (h *Human) draw(msg string) error {
	var percent float64
	if h.size > 0 {
		percent = float64(h.written) / float64(h.size)
	}
	line := fmt.Sprintf("Pass %d/%d [%s] %s %s/%s (%s/s)",
		h.pass, h.total, labelStyle.Render(h.label), h.bar.ViewAs(percent),
		formatBytes(h.written), formatBytes(h.size), formatBytes(uint64(h.rate)))
	if msg != "" {
		line += " " + msg
	}
	prefix := ""
	if h.tty {
		prefix = "\r"
	}
	_, err := io.WriteString(h.w, prefix+line)
	return err
}

// formatBytes двоичные единицы: KiB, MiB, GiB
func formatBytes(n uint64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", v, units[i]))
}
