// Package logging is the diagnostic logger shared by the calculator packages.
//
// Calculations never fail; data problems (an unknown formula in a catalog,
// an optional group with two filled subjects) are reported here instead.
package logging

import (
	"github.com/shrimpsizemoose/trekker/logger"
)

// Logf reports data-integrity problems. It defaults to trekker's error logger
// and may be replaced with SetLogger.
var Logf func(format string, v ...any) = logger.Error.Printf

// Debugf reports tracing output. It is muted until SetVerbose(true).
var Debugf func(format string, v ...any) = discard

func discard(string, ...any) {}

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = discard
		return
	}
	Logf = f
}

// SetVerbose routes Debugf to trekker's debug logger when on is true.
func SetVerbose(on bool) {
	if on {
		Debugf = logger.Debug.Printf
		return
	}
	Debugf = discard
}
