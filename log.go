package animgraph

import (
	"fmt"
	"os"
)

// Tracing toggles verbose diagnostic output to stderr for the whole package.
// Grounded on the teacher's Scene.debug flag (debug.go): the evaluator itself
// has no logger instance to thread through every call, so a package-level
// switch plus a package-level helper is the same shape the teacher uses for
// its own debugLog.
var Tracing = false

// logf writes a diagnostic line to stderr when Tracing is enabled, prefixed
// like the teacher's "[willow] ..." lines.
func logf(format string, args ...any) {
	if !Tracing {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[animgraph] "+format+"\n", args...)
}

// warnOnce tracks warning keys that have already fired so call-stack overflow
// and similar sticky conditions (spec §7) are reported exactly once per
// instance rather than spamming every tick.
type warnOnce struct {
	fired map[string]bool
}

func newWarnOnce() warnOnce {
	return warnOnce{fired: make(map[string]bool)}
}

func (w *warnOnce) warn(key, format string, args ...any) {
	if w.fired[key] {
		return
	}
	w.fired[key] = true
	_, _ = fmt.Fprintf(os.Stderr, "[animgraph] warning: "+format+"\n", args...)
}
