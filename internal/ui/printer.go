package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// CheckStatus represents the outcome of a single preflight or probe check.
type CheckStatus string

const (
	CheckPassed    CheckStatus = "passed"
	CheckFailed    CheckStatus = "failed"
	CheckWarning   CheckStatus = "warning"
	CheckSkipped   CheckStatus = "skipped"
	CheckConfirmed CheckStatus = "confirmed"
)

// Printer renders rich terminal UI fragments used by the CLI.
type Printer struct {
	colorEnabled bool
	success      *color.Color
	info         *color.Color
	warn         *color.Color
	error        *color.Color
}

// NewPrinter constructs a Printer with colour automatically enabled for TTY outputs.
func NewPrinter() *Printer {
	enabled := supportsColor(os.Stdout) && os.Getenv("NO_COLOR") == ""

	p := &Printer{
		colorEnabled: enabled,
		success:      color.New(color.FgGreen, color.Bold),
		info:         color.New(color.FgBlue, color.Bold),
		warn:         color.New(color.FgYellow, color.Bold),
		error:        color.New(color.FgRed, color.Bold),
	}

	if !enabled {
		p.success.DisableColor()
		p.info.DisableColor()
		p.warn.DisableColor()
		p.error.DisableColor()
	}

	return p
}

// PrintBanner renders the application banner.
func (p *Printer) PrintBanner() {
	lines := []string{
		"=========================================================",
		"   site-deploy — nginx virtual host provisioning",
		"",
		"   Require: Debian family (amd64 && arm64), root shell",
		"=========================================================",
	}

	for _, line := range lines {
		p.success.Println(line)
	}
}

// PrintSeparator prints a repeated character separator.
func (p *Printer) PrintSeparator(char string, length int) {
	if length <= 0 {
		return
	}
	fmt.Println(strings.Repeat(char, length))
}

// PrintCheck renders a single check result line.
func (p *Printer) PrintCheck(name string, status CheckStatus) {
	var mark, text string

	switch status {
	case CheckPassed:
		mark = p.success.Sprint("✓")
		text = "ok"
	case CheckFailed:
		mark = p.error.Sprint("✕")
		text = "failed"
	case CheckWarning:
		mark = p.warn.Sprint("!")
		text = "warning"
	case CheckConfirmed:
		mark = p.warn.Sprint("!")
		text = "confirmed by operator"
	case CheckSkipped:
		mark = "-"
		text = "skipped"
	default:
		mark = "-"
		text = "unknown"
	}

	fmt.Printf("[ %s ] %s (%s)\n", mark, name, text)
}

// SummaryRow is one label/value pair of the final deployment summary.
type SummaryRow struct {
	Label string
	Value string
	Good  bool
	Bad   bool
}

// PrintSummary renders the deployment summary with aligned label columns.
func (p *Printer) PrintSummary(title string, rows []SummaryRow) {
	p.PrintSeparator("-", 57)
	p.success.Println(title)
	fmt.Println()

	maxLabelWidth := 0
	for _, row := range rows {
		if width := runewidth.StringWidth(row.Label); width > maxLabelWidth {
			maxLabelWidth = width
		}
	}

	for _, row := range rows {
		label := row.Label + strings.Repeat(" ", maxLabelWidth-runewidth.StringWidth(row.Label))

		value := row.Value
		switch {
		case row.Good:
			value = p.success.Sprint(value)
		case row.Bad:
			value = p.error.Sprint(value)
		default:
			value = p.warn.Sprint(value)
		}

		fmt.Printf("%s   %s\n", p.info.Sprint(label+":"), value)
	}

	p.PrintSeparator("-", 57)
}

// PrintHint renders a remediation suggestion for the operator.
func (p *Printer) PrintHint(hint string) {
	if hint == "" {
		return
	}
	fmt.Printf("%s %s\n", p.warn.Sprint("hint:"), hint)
}

func supportsColor(w *os.File) bool {
	return term.IsTerminal(int(w.Fd()))
}
