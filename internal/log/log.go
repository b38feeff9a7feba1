// Package log prints leveled, colored console messages.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Predefine color functions for different log levels
var (
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarnColor    = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	DetailColor  = color.New(color.FgWhite)
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects normal and error output; nil keeps the current writer.
// It returns a function restoring the previous writers.
func SetOutput(out, errOut io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prevOut, prevErr := stdout, stderr
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

func writers() (io.Writer, io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	return stdout, stderr
}

// Info prints an informational message (cyan).
func Info(format string, a ...any) {
	out, _ := writers()
	InfoColor.Fprintf(out, format+"\n", a...)
}

// Success prints a success message (green).
func Success(format string, a ...any) {
	out, _ := writers()
	SuccessColor.Fprintf(out, format+"\n", a...)
}

// Warn prints a warning message (yellow) to stderr.
func Warn(format string, a ...any) {
	_, errOut := writers()
	WarnColor.Fprintf(errOut, "Warning: "+format+"\n", a...)
}

// Error prints an error message (red) to stderr.
func Error(format string, a ...any) {
	_, errOut := writers()
	ErrorColor.Fprintf(errOut, "Error: "+format+"\n", a...)
}

// Detail prints less important details.
func Detail(format string, a ...any) {
	out, _ := writers()
	DetailColor.Fprintf(out, format+"\n", a...)
}
