// Package logging sets up the colorized, leveled stderr backend shared by
// every long-lived component (Conn, decoder loop, CLI command), mirroring
// the teacher's style of injecting a Logger rather than calling a global
// one directly. Grounded on kryptco-kr's logging.go (op/go-logging
// backend + formatter setup) with fatih/color accenting the level name.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/op/go-logging"
)

var base = logging.MustGetLogger("binlogtail")

var stderrFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} ▶ %{message}`,
)

// Level re-exports the handful of levels the CLI's --log-level flag
// accepts, keeping op/go-logging out of the CLI package's import set.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

func (l Level) goLoggingLevel() logging.Level {
	switch l {
	case LevelError:
		return logging.ERROR
	case LevelWarning:
		return logging.WARNING
	case LevelDebug:
		return logging.DEBUG
	default:
		return logging.INFO
	}
}

// Setup configures the package-level backend. useColor false disables the
// ANSI accents; Setup does not itself detect whether stderr is a terminal.
func Setup(level Level, useColor bool) {
	color.NoColor = !useColor
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, stderrFormat)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level.goLoggingLevel(), "binlogtail")
	logging.SetBackend(leveled)
}

// Logger is the ambient two-method interface satisfied by the package
// logger and by any caller-supplied substitute, mirroring the teacher's
// mysql.Logger shape (cfg.Logger.Print) so protocol.Conn and the decoder
// loop never depend on op/go-logging directly.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
}

// Default returns a Logger backed by the package-level op/go-logging
// instance. Print and Printf log at info level with no color accent;
// only Errorf and Warnf add one.
func Default() Logger { return defaultLogger{} }

type defaultLogger struct{}

func (defaultLogger) Print(v ...interface{}) {
	base.Info(fmt.Sprint(v...))
}

func (defaultLogger) Printf(format string, v ...interface{}) {
	base.Infof(format, v...)
}

// Errorf logs at error level, accenting the "ERROR" tag in red when color
// is enabled, matching the teacher's practice of surfacing connection
// failures distinctly from routine trace output.
func Errorf(format string, v ...interface{}) {
	base.Error(color.RedString("ERROR ") + fmt.Sprintf(format, v...))
}

// Warnf logs at warning level.
func Warnf(format string, v ...interface{}) {
	base.Warning(color.YellowString("WARN ") + fmt.Sprintf(format, v...))
}
