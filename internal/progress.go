package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, status lines)
type UIManager interface {
	// Progress bars
	NewBytesBar(total int64, description string) ProgressBar

	// Status lines
	Success(format string, args ...any)
	Failure(format string, args ...any)
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar abstracts a byte-counting progress bar
type ProgressBar interface {
	io.Writer
	Describe(description string)
	Finish()
}

// StandardUIManager writes status lines to stdout
type StandardUIManager struct {
	out      io.Writer
	quiet    bool
	showBars bool
	ok       *color.Color
	bad      *color.Color
}

func NewUIManager(quiet bool) UIManager {
	return &StandardUIManager{
		out:      os.Stdout,
		quiet:    quiet,
		showBars: !quiet && isatty.IsTerminal(os.Stderr.Fd()),
		ok:       color.New(color.FgGreen),
		bad:      color.New(color.FgYellow),
	}
}

// NewSilentUI returns a UI that writes status lines to w and never draws bars
func NewSilentUI(w io.Writer) UIManager {
	return &StandardUIManager{
		out: w,
		ok:  color.New(),
		bad: color.New(),
	}
}

func (ui *StandardUIManager) NewBytesBar(total int64, description string) ProgressBar {
	if !ui.showBars {
		return &SilentProgressBar{}
	}
	if total <= 0 {
		total = -1
	}
	return &VisibleProgressBar{bar: progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (ui *StandardUIManager) Success(format string, args ...any) {
	if !ui.quiet {
		ui.ok.Fprintf(ui.out, "[+] "+format+"\n", args...)
	}
}

func (ui *StandardUIManager) Failure(format string, args ...any) {
	ui.bad.Fprintf(ui.out, "[!] "+format+"\n", args...)
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Write(p []byte) (int, error) {
	return v.bar.Write(p)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar discards progress
type SilentProgressBar struct{}

func (s *SilentProgressBar) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *SilentProgressBar) Describe(description string) {}

func (s *SilentProgressBar) Finish() {}
