// Command versimap-serve exposes a compiled MappingTable over a WebSocket:
// a client sends {"op":"map"|"unmap"|"qualified","ref":"..."} and gets a
// response with the same id back on its own connection.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"github.com/crosswire-go/versimap/core/versemap"
	"github.com/crosswire-go/versimap/core/versification/catalog"
	"github.com/crosswire-go/versimap/internal/mappingfile"
)

var CLI struct {
	Left     string `required:"" help:"Left versification system name (e.g. KJV)"`
	Pivot    string `required:"" help:"Pivot versification system name (e.g. Vulgate)"`
	Mapping  string `required:"" help:"Path to the shorthand mapping file" type:"existingfile"`
	Addr     string `default:":8765" help:"Address to listen on"`
	Path     string `default:"/ws" help:"HTTP path to serve the WebSocket on"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("versimap-serve"),
		kong.Description("Live query server for a compiled versification mapping"),
		kong.UsageOnError(),
	)

	logger := newLogger()

	table, err := buildTable(logger)
	if err != nil {
		logger.Error("failed to build mapping table", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("mapping table compiled",
		slog.String("fingerprint", table.Fingerprint()),
		slog.Int("diagnostic_records", len(table.Diagnostics().Records())))

	hub := NewHub(newQueryTable(table), logger)
	go hub.Run()

	mux := http.NewServeMux()
	mux.Handle(CLI.Path, hub)

	logger.Info("listening", slog.String("addr", CLI.Addr), slog.String("path", CLI.Path))
	if err := http.ListenAndServe(CLI.Addr, mux); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch CLI.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildTable(logger *slog.Logger) (*versemap.MappingTable, error) {
	left, err := catalog.Lookup(CLI.Left)
	if err != nil {
		return nil, fmt.Errorf("left versification: %w", err)
	}
	pivot, err := catalog.Lookup(CLI.Pivot)
	if err != nil {
		return nil, fmt.Errorf("pivot versification: %w", err)
	}
	entries, err := mappingfile.LoadFile(CLI.Mapping)
	if err != nil {
		return nil, fmt.Errorf("loading mapping file: %w", err)
	}
	return versemap.Build(left, pivot, entries, logger), nil
}
