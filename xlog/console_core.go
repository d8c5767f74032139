package xlog

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

func newConsoleCore(
	lvlEnabler zapcore.LevelEnabler,
	encoder logEncoderType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	return newCommonCore(lvlEnabler, encoder, zapcore.Lock(os.Stdout), lvlEnc, tsEnc)
}

// newWriterCore writes the logs into w. It is mostly used
// to capture the logs in memory.
func newWriterCore(w io.Writer) xLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder logEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) xLogCore {
		return newCommonCore(lvlEnabler, encoder, zapcore.Lock(zapcore.AddSync(w)), lvlEnc, tsEnc)
	}
}
