// Command versimap compiles a shorthand mapping file into a MappingTable
// and serves map/unmap/qualified queries against it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/crosswire-go/versimap/core/versemap"
	"github.com/crosswire-go/versimap/core/versification/catalog"
	"github.com/crosswire-go/versimap/internal/mappingfile"
)

const version = "0.1.0"

// CLI is the command-line interface for versimap.
var CLI struct {
	Left     string `required:"" help:"Left versification system name (e.g. KJV)"`
	Pivot    string `required:"" help:"Pivot versification system name (e.g. Vulgate)"`
	Mapping  string `required:"" help:"Path to the shorthand mapping file" type:"existingfile"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level"`

	Build     BuildCmd     `cmd:"" help:"Compile the mapping file and report diagnostics"`
	Map       MapCmd       `cmd:"" help:"Map a single left reference to the pivot system"`
	Unmap     UnmapCmd     `cmd:"" help:"Unmap a single pivot reference to the left system"`
	Qualified QualifiedCmd `cmd:"" help:"Render the qualified-key form of a mapped left reference"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("versimap"),
		kong.Description("Bidirectional versification mapper"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func logger() *slog.Logger {
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

// buildTable loads the two named versifications and the mapping file, and
// compiles a MappingTable, tagging the run with a correlation ID so the
// diagnostics this prints can be tied back to one invocation.
func buildTable() (*versemap.MappingTable, string, time.Duration, error) {
	runID := uuid.NewString()
	start := time.Now()

	left, err := catalog.Lookup(CLI.Left)
	if err != nil {
		return nil, runID, 0, fmt.Errorf("left versification: %w", err)
	}
	pivot, err := catalog.Lookup(CLI.Pivot)
	if err != nil {
		return nil, runID, 0, fmt.Errorf("pivot versification: %w", err)
	}
	entries, err := mappingfile.LoadFile(CLI.Mapping)
	if err != nil {
		return nil, runID, 0, fmt.Errorf("loading mapping file: %w", err)
	}

	log := logger().With(slog.String("run_id", runID))
	table := versemap.Build(left, pivot, entries, log)
	return table, runID, time.Since(start), nil
}

// BuildCmd compiles the mapping file and prints a diagnostics summary.
type BuildCmd struct{}

func (c *BuildCmd) Run() error {
	table, runID, elapsed, err := buildTable()
	if err != nil {
		return err
	}
	fmt.Printf("run %s: compiled %s -> %s in %s\n", runID, CLI.Left, CLI.Pivot, elapsed)
	fmt.Printf("  fingerprint: %s\n", table.Fingerprint())
	records := table.Diagnostics().Records()
	fmt.Printf("  %s discarded/fallback record(s)\n", humanize.Comma(int64(len(records))))
	for _, rec := range records {
		fmt.Printf("    [%s] %s = %q: %v\n", rec.Code, rec.Key, rec.Value, rec.Err)
	}
	if table.HasErrors() {
		return fmt.Errorf("build completed with errors; see records above")
	}
	return nil
}

// MapCmd maps a single left-side reference into the pivot system.
type MapCmd struct {
	Ref string `arg:"" help:"Left-side OSIS reference to map"`
}

func (c *MapCmd) Run() error {
	table, _, _, err := buildTable()
	if err != nil {
		return err
	}
	result, err := table.MapToString(c.Ref)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

// UnmapCmd unmaps a single pivot-side reference into the left system.
type UnmapCmd struct {
	Ref string `arg:"" help:"Pivot-side OSIS reference to unmap"`
}

func (c *UnmapCmd) Run() error {
	table, _, _, err := buildTable()
	if err != nil {
		return err
	}
	result, err := table.UnmapToString(c.Ref)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

// QualifiedCmd renders the qualified-key form of a mapped left reference.
type QualifiedCmd struct {
	Ref string `arg:"" help:"Left-side OSIS reference to map"`
}

func (c *QualifiedCmd) Run() error {
	table, _, _, err := buildTable()
	if err != nil {
		return err
	}
	result, err := table.MapToQualifiedString(c.Ref)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

// VersionCmd prints the CLI version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("versimap " + version)
	return nil
}
