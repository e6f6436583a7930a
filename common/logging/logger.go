package logging

import (
	"os"
	"path"

	"github.com/sirupsen/logrus"
)

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

func Setup(dir string, colors bool, json bool, level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)

	var lineFormatter logrus.Formatter
	if json {
		lineFormatter = &logrus.JSONFormatter{
			TimestampFormat:  "2006-01-02 15:04:05.000 Z07:00",
			DisableTimestamp: false,
		}
	} else {
		lineFormatter = &logrus.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05.000 Z07:00",
			FullTimestamp:    true,
			ForceColors:      colors,
			DisableColors:    !colors,
			DisableTimestamp: false,
			QuoteEmptyFields: true,
		}
	}
	logrus.SetFormatter(&utcFormatter{lineFormatter})
	logrus.SetOutput(os.Stdout)

	if dir == "" || dir == "-" {
		return nil
	}
	_ = os.MkdirAll(dir, os.ModePerm)

	f, err := os.OpenFile(path.Join(dir, "mediakit.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logrus.AddHook(&fileHook{writer: f, formatter: &utcFormatter{&logrus.JSONFormatter{}}})
	return nil
}

type fileHook struct {
	writer    *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}
