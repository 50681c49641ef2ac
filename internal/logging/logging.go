// Package logging builds the console logger used by the command line tool.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/Laisky/zap/zapcore"
)

// EnvVar names the environment variable holding the default log level.
const EnvVar = "MDBOOK_EPUB_LOG"

// DefaultLevel is used when neither a flag nor EnvVar sets a level.
const DefaultLevel = "error"

// Level picks the level to log at: flag when set, then EnvVar, then
// DefaultLevel.
func Level(flag string) string {
	if flag = strings.TrimSpace(flag); flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(EnvVar)); env != "" {
		return env
	}
	return DefaultLevel
}

// New returns a logger writing human readable lines to w. level is one of
// debug, info, warn, error or off.
func New(w io.Writer, level string) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "off" || level == "none" {
		return zap.NewNop(), nil
	}
	if level == "trace" {
		level = "debug"
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core).Named("mdbook-epub"), nil
}
