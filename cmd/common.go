package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

func die(fstring string, args ...interface{}) {
	if !strings.HasSuffix(fstring, "\n") {
		fstring += "\n"
	}
	_, _ = os.Stderr.WriteString(fmt.Sprintf(fstring, args...))
	os.Exit(1)
}

func setupLogging() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelError,
	})))
	if os.Getenv("BUCKETDAV_LOGGING") == "DEBUG" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})))
	}
}
