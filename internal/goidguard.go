package internal

import "github.com/petermattis/goid"

// The reactivity core is a single process-wide singleton and is
// explicitly not safe for concurrent mutation. DevMode, when on, uses
// a goroutine-id check purely as a diagnostic: it warns each time
// Track/Trigger/TrackDep/TriggerDep is called from a different
// goroutine than the one that last called one of them, which is
// almost always a sign of accidental
// concurrent use rather than a deliberate handoff.
var (
	DevMode        = true
	lastGoroutine  int64 = -1
	warnHandler    func(string)
)

// SetWarnHandler installs the sink used for development-only
// diagnostics: an injectable warn callback so production builds can
// leave it nil and strip warnings entirely.
func SetWarnHandler(fn func(string)) {
	warnHandler = fn
}

func warn(msg string) {
	if !DevMode || warnHandler == nil {
		return
	}
	warnHandler(msg)
}

// Warn routes a development-time diagnostic through the installed warn
// sink. Exported so the public package can report Proxy/Ref misuse
// (readonly writes, missing paths) through the same sink as the
// tracking core's own goroutine-safety warnings.
func Warn(msg string) { warn(msg) }

func assertSingleGoroutine() {
	if !DevMode {
		return
	}

	gid := goid.Get()
	if lastGoroutine == -1 {
		lastGoroutine = gid
		return
	}

	if gid != lastGoroutine {
		warn("reactivity core accessed from a different goroutine than before; this core is single-threaded cooperative and is not safe for concurrent mutation")
		lastGoroutine = gid
	}
}
