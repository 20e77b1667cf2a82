package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every component that is not handed its own
var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Data["app"] = h.appName
	return nil
}

// Init configures Logger for appName at the given level ("info" when empty)
func Init(appName, level string) {
	Logger.SetOutput(os.Stdout)

	level = strings.ToLower(level)
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", level)
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	Logger.AddHook(&appNameHook{appName})
}
