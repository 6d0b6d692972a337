package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/common-nighthawk/go-figure"
	"gopkg.in/natefinch/lumberjack.v2"
	"reading-hero-service/internal/config"
)

// setupLogging tees the standard logger into a rotated file when one is
// configured. The returned closer flushes and closes that file.
func setupLogging(cfg config.Config) io.Closer {
	if cfg.Log.File == "" {
		return io.NopCloser(nil)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file
}

func printBanner() {
	figure.NewFigure("READING HERO", "", true).Print()
	fmt.Println("======================================================")
}
