// Package log is the debug log shared by every release step.
//
// Lines written before a destination is chosen are held in memory, so what
// happens while configuration loads still reaches the file named by
// --debug-log or the debug_log key.
package log

import (
	"bytes"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/alexanderchan/changeset-release/internal/utils"
)

type sinkMode int

const (
	modeHolding sinkMode = iota
	modeFile
	modeDiscard
)

// sink is the io.Writer behind the package logger.
type sink struct {
	mu      sync.Mutex
	mode    sinkMode
	file    *os.File
	pending bytes.Buffer
}

var (
	debugSink = &sink{}
	logger    = log.New(debugSink, "", log.LstdFlags|log.Lmicroseconds)
)

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case modeFile:
		n, err := s.file.Write(p)
		_ = s.file.Sync()
		return n, err
	case modeDiscard:
		return len(p), nil
	default:
		return s.pending.Write(p)
	}
}

// drop forgets held lines and ignores everything written afterwards.
func (s *sink) drop() {
	s.mode = modeDiscard
	s.pending.Reset()
}

func (s *sink) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if s.mode == modeFile {
		s.mode = modeDiscard
	}
	return err
}

// SetFile sends the log to path, appending, and writes out the held lines.
// An empty path, or a file that cannot be opened, drops the log entirely.
func SetFile(path string) error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	_ = debugSink.closeFile()
	if path == "" {
		debugSink.drop()
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, utils.DefaultFilePerms) //nolint:gosec
	if err != nil {
		debugSink.drop()
		return err
	}

	if debugSink.pending.Len() > 0 {
		_, _ = debugSink.pending.WriteTo(f)
		_ = f.Sync()
	}
	debugSink.file = f
	debugSink.mode = modeFile
	return nil
}

// Printf logs one formatted line.
func Printf(format string, args ...any) {
	logger.Printf(format, args...)
}

// Output logs what a delegated command printed, one "<command> | <line>" entry
// per non-blank line.
func Output(command, output string) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		logger.Printf("%s | %s", command, line)
	}
}

// Close closes the log file. Later lines are dropped.
func Close() error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()
	return debugSink.closeFile()
}
