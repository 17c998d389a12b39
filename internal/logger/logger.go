package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var L = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

// Init routes log output to a file when path is set, otherwise stderr.
// The TUI owns stdout, so the console writer never goes there.
func Init(path string) error {
	var w io.Writer = os.Stderr
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = file
	}
	L = log.Output(zerolog.ConsoleWriter{Out: w})
	return nil
}

func Info(v ...interface{})             { L.Info().Msgf("%v", v...) }
func Error(v ...interface{})            { L.Error().Msgf("%v", v...) }
func Infof(f string, v ...interface{})  { L.Info().Msgf(f, v...) }
func Errorf(f string, v ...interface{}) { L.Error().Msgf(f, v...) }
