package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control where and how verbosely logs are written
type Options struct {
	Level string
	// File, when set, receives JSON logs through a rotating writer
	File string
	// Console receives human readable logs when File is empty; nil discards them
	Console io.Writer
}

// Setup builds the process logger, installs it as the zerolog global, and returns a
// closer for the underlying file if one was opened.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var (
		w      io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch {
	case opts.File != "":
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w, closer = rotating, rotating
	case opts.Console != nil:
		w = zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
