package config

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger.
//
// level is any logrus level name, format is "json" or "text".
func SetupLogger(w io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q, want json or text", format)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(w)
	return nil
}
