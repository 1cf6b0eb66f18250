package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

func InitLogger() *Logger {
	logger := logrus.New()

	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if os.Getenv("LOG_DEBUG") != "" {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return &Logger{logger}
}
