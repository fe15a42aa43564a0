// Package signals emits operator-visible structured message blocks.
//
// Fatal errors and advisory warnings are wrapped in machine-delimited
// start/end markers so the invoking harness can distinguish a hard failure
// from a degraded-but-complete run by scanning captured output.
package signals

import (
	"fmt"
	"io"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

// Block markers. External tools that embed messages in their own output
// use the same delimiters, so Scan* can relay them.
const (
	ErrorStart   = "__PATHWAY_ERROR_START__"
	ErrorEnd     = "__PATHWAY_ERROR_END__"
	WarningStart = "__PATHWAY_WARNING_START__"
	WarningEnd   = "__PATHWAY_WARNING_END__"
)

var (
	errorPattern   = regexp.MustCompile(`(?s)` + ErrorStart + `(.*?)` + ErrorEnd)
	warningPattern = regexp.MustCompile(`(?s)` + WarningStart + `(.*?)` + WarningEnd)
)

// Emitter writes structured message blocks to a single writer.
type Emitter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.Logger
}

// NewEmitter creates an emitter writing blocks to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w, logger: zap.NewNop()}
}

// SetLogger sets the logger used to mirror emitted messages.
func (e *Emitter) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Error emits a fatal-error block.
func (e *Emitter) Error(msg string) {
	e.logger.Error(msg)
	e.emit(ErrorStart, ErrorEnd, msg)
}

// Errorf emits a formatted fatal-error block.
func (e *Emitter) Errorf(format string, args ...any) {
	e.Error(fmt.Sprintf(format, args...))
}

// Warning emits an advisory warning block.
func (e *Emitter) Warning(msg string) {
	e.logger.Warn(msg)
	e.emit(WarningStart, WarningEnd, msg)
}

// Warningf emits a formatted advisory warning block.
func (e *Emitter) Warningf(format string, args ...any) {
	e.Warning(fmt.Sprintf(format, args...))
}

func (e *Emitter) emit(start, end, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.w, "%s%s%s\n", start, msg, end)
}

// ScanErrors extracts the messages of all error blocks embedded in s.
func ScanErrors(s string) []string {
	return scan(errorPattern, s)
}

// ScanWarnings extracts the messages of all warning blocks embedded in s.
func ScanWarnings(s string) []string {
	return scan(warningPattern, s)
}

func scan(p *regexp.Regexp, s string) []string {
	var msgs []string
	for _, m := range p.FindAllStringSubmatch(s, -1) {
		msgs = append(msgs, m[1])
	}
	return msgs
}
