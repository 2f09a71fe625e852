package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Formatter converts log entries to their textual representation.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Entry represents a single log record.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  []Field
}

// TextFormatter renders log entries using a traditional textual format.
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
	Output           io.Writer
}

// Format converts the Entry into its textual representation.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = "15:04:05"
	}

	var timestamp string
	if !f.DisableTimestamp {
		timestamp = entry.Time.Format(timestampFormat)
	}

	return formatEntry(entry, timestamp, entry.Level.String(), nil), nil
}

type fieldFormatter func(Field) string

func defaultFieldFormatter(field Field) string {
	return fmt.Sprintf("%s=%v", field.Key, field.Value)
}

func formatEntry(entry *Entry, timestamp, levelText string, formatter fieldFormatter) []byte {
	if formatter == nil {
		formatter = defaultFieldFormatter
	}

	var buf bytes.Buffer

	if timestamp != "" {
		buf.WriteString(timestamp)
		buf.WriteString(" ")
	}

	buf.WriteString("[")
	buf.WriteString(levelText)
	buf.WriteString("] ")
	buf.WriteString(entry.Message)

	for _, field := range entry.Fields {
		buf.WriteString(" ")
		buf.WriteString(formatter(field))
	}

	buf.WriteString("\n")
	return buf.Bytes()
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

// ColoredFormatter renders log entries with coloured levels when enabled.
type ColoredFormatter struct {
	timestampFormat string
	colors          map[Level]*color.Color
	enableColors    bool
}

// Format converts the Entry into a coloured textual representation.
func (f *ColoredFormatter) Format(entry *Entry) ([]byte, error) {
	timestampFormat := f.timestampFormat
	if timestampFormat == "" {
		timestampFormat = "15:04:05"
	}

	timestamp := entry.Time.Format(timestampFormat)

	level := entry.Level.String()
	if f.enableColors {
		if c := f.colors[entry.Level]; c != nil {
			level = c.Sprint(level)
		}
	}

	faint := color.New(color.Faint)
	fields := func(field Field) string {
		text := defaultFieldFormatter(field)
		if f.enableColors {
			return faint.Sprint(text)
		}
		return text
	}

	return formatEntry(entry, timestamp, level, fields), nil
}
