package wasm

import "github.com/sirupsen/logrus"

// PrintDebugInfo records whether SetDebug last turned the decoder's trace
// logging on. The decoder does not read it; the logger level set by
// SetDebug is what takes effect.
var PrintDebugInfo = false

var logger = logrus.New()

func init() {
	logger.SetLevel(logrus.ErrorLevel)
}

// SetDebug raises or lowers the decoder's log level and updates
// PrintDebugInfo to match. Assigning PrintDebugInfo directly does not
// change the log level.
func SetDebug(on bool) {
	PrintDebugInfo = on
	if on {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.ErrorLevel)
	}
}
