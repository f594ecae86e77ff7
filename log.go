package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "ttscli").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "ttscli.log"), nil
}

// setupLog sends log output to a rotating file in the cache directory; the
// terminal belongs to the menus.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    viper.GetInt("log.max_size"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAge:     28,
	}
	log.SetOutput(w)
	log.SetReportTimestamp(true)

	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Warn("Unknown log level, using info", "level", viper.GetString("log.level"))
		level = log.InfoLevel
	}
	log.SetLevel(level)

	return w.Close, nil
}
