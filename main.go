package main

import (
	"log/slog"
	"os"

	"imgex/tool"

	"github.com/alecthomas/kong"
)

func setupLogging(g tool.Globals) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if g.LogJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	var cli tool.CLI
	kctx := kong.Parse(&cli,
		kong.Name("imgex"),
		kong.Description("Image conversion, correction and resizing"),
		kong.UsageOnError(),
	)
	setupLogging(cli.Globals)

	if err := kctx.Run(&cli.Globals); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
