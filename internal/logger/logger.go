package logger

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/morrow/internal/constants"
)

var (
	// Logger writes logfmt records to the rotating log file
	Logger *log.Logger
	// console mirrors records to stderr for --debug and the foreground daemon
	console *log.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	Console   bool // mirror Info and above to stderr
	ConfigDir string
}

// Init initializes the global loggers with the given configuration
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(fileWriter, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
		Formatter:       log.LogfmtFormatter,
	})

	console = nil
	if cfg.Debug || cfg.Console {
		console = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    cfg.Debug,
			ReportTimestamp: true,
			TimeFormat:      constants.TimeFormat + ":05",
			Level:           level,
		})
	}
	return nil
}

// With returns a child of the file logger carrying the given key/value pairs.
// It returns nil when the global logger has not been initialized.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With(keyvals...)
}

func each(fn func(l *log.Logger)) {
	if Logger != nil {
		fn(Logger)
	}
	if console != nil {
		fn(console)
	}
}

func Debug(msg string, keyvals ...interface{}) {
	each(func(l *log.Logger) { l.Debug(msg, keyvals...) })
}

func Info(msg string, keyvals ...interface{}) {
	each(func(l *log.Logger) { l.Info(msg, keyvals...) })
}

func Warn(msg string, keyvals ...interface{}) {
	each(func(l *log.Logger) { l.Warn(msg, keyvals...) })
}

func Error(msg string, keyvals ...interface{}) {
	each(func(l *log.Logger) { l.Error(msg, keyvals...) })
}

// Fatal logs at error level to every sink and exits
func Fatal(msg string, keyvals ...interface{}) {
	Error(msg, keyvals...)
	os.Exit(1)
}
