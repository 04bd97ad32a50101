package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gostage/internal/catalog"
	"github.com/dbsmedya/gostage/internal/config"
	"github.com/dbsmedya/gostage/internal/database"
	"github.com/dbsmedya/gostage/internal/extractor"
	"github.com/dbsmedya/gostage/internal/graph"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var planJob string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the load order and column resolution for a job",
	Long: `Plan scans the source schema, builds the foreign-key dependency graph
and displays what a sync run would do, without moving any data.

The plan shows:
  - Load order (parent tables first), including ancestors pulled in
    by dependency closure
  - The effective column set per table (selected columns plus required
    NOT NULL columns and the primary key)
  - The incremental strategy per table (keyset or full reload)

Example:
  gostage plan --config gostage.yaml --job nightly_sync`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planJob, "job", "j", "",
		"Job name from configuration file (required)")
	planCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(planCmd)
}

// planEntry is one resolved table of the plan, ready for display.
type planEntry struct {
	table    graph.TableRef
	columns  []string
	strategy string
	selected bool // named in the job, as opposed to pulled in as an ancestor
}

func runPlan(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.ChunkSize, overrides.SleepSeconds, overrides.SkipVerify)

	job, err := cfg.GetJob(planJob)
	if err != nil {
		return err
	}

	// plan only reads the source
	ctx := context.Background()
	dbManager := database.NewManager(cfg)
	if err := dbManager.ConnectSource(ctx); err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer dbManager.Close()

	cat := catalog.NewMySQL(dbManager.Source)
	entries, err := computePlan(ctx, cat, job)
	if err != nil {
		return err
	}

	printPlan(cfg, job, entries)
	return nil
}

// computePlan builds the graph, orders the selection and resolves the
// effective column set per table. Planning failures (unknown table,
// ambiguous name, cycle) surface here, before any data movement.
func computePlan(ctx context.Context, cat catalog.Catalog, job *config.JobConfig) ([]planEntry, error) {
	g, err := graph.Build(ctx, cat, graph.BuildOptions{
		IncludeSchemas: job.IncludeSchemas,
		ExcludeSchemas: job.ExcludeSchemas,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	sel := extractor.SelectionFromJob(job)
	order, err := g.SortedTables(sel.TableNames())
	if err != nil {
		return nil, fmt.Errorf("failed to compute load order: %w", err)
	}

	named := make(map[graph.TableRef]bool, sel.Len())
	for _, name := range sel.TableNames() {
		ref, err := g.Resolve(name)
		if err != nil {
			return nil, err
		}
		named[ref] = true
	}

	entries := make([]planEntry, 0, len(order))
	for _, table := range order {
		cols, err := cat.TableColumns(ctx, table.Schema, table.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		pkColumn, err := cat.PrimaryKey(ctx, table.Schema, table.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
		}

		resolved, err := extractor.ResolveColumns(table, cols, pkColumn, sel.For(table))
		if err != nil {
			return nil, err
		}

		strategy := "full reload (non-numeric key)"
		for _, c := range cols {
			if c.Name == pkColumn && c.IsNumeric() {
				strategy = "incremental (keyset)"
			}
		}

		entries = append(entries, planEntry{
			table:    table,
			columns:  resolved,
			strategy: strategy,
			selected: named[table],
		})
	}
	return entries, nil
}

func printPlan(cfg *config.Config, job *config.JobConfig, entries []planEntry) {
	printHeader("Sync Plan: %s", planJob)

	fmt.Fprintln(outputWriter)
	printSection("Job Overview")
	fmt.Fprintf(outputWriter, "  Selected Tables: %d\n", len(job.Tables))
	fmt.Fprintf(outputWriter, "  Tables in Plan:  %d (including ancestors)\n", len(entries))
	fmt.Fprintf(outputWriter, "  Destination DB:  %s\n", cfg.Destination.Database)

	fmt.Fprintln(outputWriter)
	printSection("Load Order (parent tables first)")

	// align the strategy column across rows
	nameWidth := 0
	for _, e := range entries {
		if w := runewidth.StringWidth(e.table.String()); w > nameWidth {
			nameWidth = w
		}
	}
	for i, e := range entries {
		name := e.table.String()
		pad := strings.Repeat(" ", nameWidth-runewidth.StringWidth(name)+2)

		marker := color.Green.Sprint(name)
		if !e.selected {
			marker = color.Gray.Sprint(name) + " (ancestor)"
		}
		fmt.Fprintf(outputWriter, "  [%d] %s%s%s\n", i+1, marker, pad, color.Cyan.Sprint(e.strategy))
		fmt.Fprintf(outputWriter, "      columns: %s\n", strings.Join(e.columns, ", "))
	}

	processing := job.GetJobProcessing(cfg.Processing)
	fmt.Fprintln(outputWriter)
	printSection("Configuration")
	fmt.Fprintf(outputWriter, "  Chunk Size:          %d", processing.ChunkSize)
	if job.Processing != nil && job.Processing.ChunkSize > 0 {
		fmt.Fprint(outputWriter, " (job-specific)")
	}
	fmt.Fprintln(outputWriter)
	fmt.Fprintf(outputWriter, "  Sleep Between Chunks: %.1fs\n", processing.SleepSeconds)
	fmt.Fprintf(outputWriter, "  Verification Method:  %s\n", cfg.Verification.Method)
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", color.Bold.Sprint(title))
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", color.Bold.Sprint(title))
	fmt.Fprintln(outputWriter, strings.Repeat("-", runewidth.StringWidth(title)+2))
}
