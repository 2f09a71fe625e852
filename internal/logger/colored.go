package logger

import (
	"os"

	"github.com/fatih/color"
)

// ColoredLogger renders log messages using colours when supported by the output writer.
type ColoredLogger struct {
	*StandardLogger
}

// NewColoredLogger returns a logger configured for colourful terminal output when possible.
func NewColoredLogger(options ...Option) *ColoredLogger {
	std := NewStandardLogger(options...)

	writer := std.output
	if writer == nil {
		writer = os.Stdout
	}

	useColor := isTerminal(writer) && os.Getenv("NO_COLOR") == ""

	std.formatter = &ColoredFormatter{
		timestampFormat: "15:04:05",
		enableColors:    useColor,
		colors: map[Level]*color.Color{
			LevelDebug: color.New(color.FgCyan),
			LevelInfo:  color.New(color.FgBlue),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed),
		},
	}

	return &ColoredLogger{StandardLogger: std}
}
