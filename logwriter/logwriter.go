// Package logwriter sets up where the runner logs go and how worker roles
// are coloured in them.
package logwriter // "github.com/dmora/concurrency/logwriter"

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Writer is a log destination and its configurations.
type Writer struct {
	io.Writer

	LogFile       string
	EnableLogging bool
	EnableColour  bool
	Cleanup       func()
}

// NewFile creates a writer for logfile (stdout if empty).
func NewFile(logfile string, enableLogging, enableColour bool) *Writer {
	return &Writer{
		LogFile:       logfile,
		EnableLogging: enableLogging,
		EnableColour:  enableColour,
	}
}

// New creates a writer around w.
func New(w io.Writer, enableLogging, enableColour bool) *Writer {
	return &Writer{
		Writer:        w,
		EnableLogging: enableLogging,
		EnableColour:  enableColour,
	}
}

// Create opens the destination. Cleanup must be called when done.
func (w *Writer) Create() error {
	color.NoColor = !w.EnableColour
	if !w.EnableLogging {
		w.Writer = io.Discard
		w.Cleanup = func() {}
		return nil
	}
	if w.Writer != nil {
		w.Writer = &lockedWriter{w: w.Writer}
		w.Cleanup = func() {}
		return nil
	}
	if w.LogFile == "" {
		w.Writer = os.Stdout
		w.Cleanup = func() {}
		return nil
	}
	f, err := os.Create(w.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	bufWriter := bufio.NewWriter(f)
	lw := &lockedWriter{w: bufWriter}
	w.Writer = lw
	w.Cleanup = func() {
		lw.mu.Lock()
		defer lw.mu.Unlock()
		if err := bufWriter.Flush(); err != nil {
			log.Printf("flush: %s", err)
		}
		if err := f.Close(); err != nil {
			log.Printf("close: %s", err)
		}
	}
	return nil
}

// Logger returns a logger writing to w with the given prefix.
func (w *Writer) Logger(prefix string) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// lockedWriter serialises writes from many workers. log.Logger already
// locks per logger, but several loggers may share one buffered file.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
