package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level   string
	File    string
	Console bool
	Pretty  bool
}

// New builds the process logger. With a File the output rotates through
// lumberjack; Console additionally mirrors it to stdout.
func New(options Options) zerolog.Logger {
	writers := make([]io.Writer, 0, 2)
	if options.Console || options.File == "" {
		var console io.Writer = os.Stdout
		if options.Pretty {
			console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}
		writers = append(writers, console)
	}
	if options.File != "" {
		writers = append(writers, RotatingFile(options.File))
	}

	var output io.Writer = writers[0]
	if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(output).Level(ParseLevel(options.Level)).With().Timestamp().Logger()
}

func RotatingFile(path string) *lumberjack.Logger {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

func ParseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
