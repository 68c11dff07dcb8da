package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/cdecl"
	"github.com/jward/cdecl/internal/config"
	"github.com/jward/cdecl/internal/runtime"
)

var (
	flagConfig string
	flagQuiet  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cdecl",
	Short:         "Flatten C declarations into a serializable catalog",
	Long:          "cdecl parses C headers and sources and records their top-level structs, enums, functions, typedefs and function-pointer typedefs.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagQuiet {
			log.SetOutput(io.Discard)
		}
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress warnings and diagnostics")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
}

// --- shared extraction flags ---

var (
	flagArgs            []string
	flagIncludeComments bool
)

func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&flagArgs, "arg", nil, "compiler argument passed to the parser (repeatable, e.g. --arg=-Iinclude)")
	cmd.Flags().BoolVar(&flagIncludeComments, "include-comments", false, "keep documentation comments while parsing")
}

// extractOptions is the fully resolved input of one extraction.
type extractOptions struct {
	Files           []string
	Args            []string
	IncludeComments bool
	Format          string
	Out             string
	Split           bool
}

// resolveOptions layers command-line values over the project config.
// Positional files replace the configured list; --arg values are appended
// to the configured args.
func resolveOptions(cmd *cobra.Command, files []string, cfg *config.Config) extractOptions {
	opts := extractOptions{
		Files:           cfg.Files,
		Args:            cfg.Args,
		IncludeComments: cfg.IncludeComments,
		Format:          cfg.Output.Format,
		Out:             cfg.Output.Path,
		Split:           cfg.Output.Split,
	}
	if len(files) > 0 {
		opts.Files = files
	}
	if len(flagArgs) > 0 {
		opts.Args = append(append([]string(nil), opts.Args...), flagArgs...)
	}
	if cmd.Flags().Changed("include-comments") {
		opts.IncludeComments = flagIncludeComments
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		opts.Format = f.Value.String()
	}
	if f := cmd.Flags().Lookup("out"); f != nil && f.Changed {
		opts.Out = f.Value.String()
	}
	if f := cmd.Flags().Lookup("split"); f != nil && f.Changed {
		opts.Split = f.Value.String() == "true"
	}
	return opts
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.LoadFromPath(flagConfig)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(wd)
}

// runExtraction runs the extractor over opts.Files.
func runExtraction(ctx context.Context, opts extractOptions) (*cdecl.Catalog, error) {
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no input files (pass them as arguments or list them in %s)", config.FileName)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	x := cdecl.New(
		cdecl.WithFiles(opts.Files...),
		cdecl.WithArgs(opts.Args...),
		cdecl.WithIncludeComments(opts.IncludeComments),
		cdecl.WithLogger(log.Default()),
	)
	return x.Run(ctx)
}

// --- extract ---

var (
	flagFormat string
	flagOut    string
	flagSplit  bool
	flagWatch  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract declarations and write the catalog",
	Long:  "Parses each file in order and writes the resulting catalog as JSON, XML, YAML, gob or a SQLite database.",
	RunE:  runExtract,
}

func init() {
	addExtractionFlags(extractCmd)
	extractCmd.Flags().StringVar(&flagFormat, "format", "json", "output format: json|xml|yaml|binary|sqlite")
	extractCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file, or directory with --split (default: catalog.<ext>)")
	extractCmd.Flags().BoolVar(&flagSplit, "split", false, "write one file per non-empty set")
	extractCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "extract again whenever an input file changes")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := resolveOptions(cmd, args, cfg)
	if err := validateOutput(opts); err != nil {
		return err
	}
	status := cmd.ErrOrStderr()
	err = extract(cmd.Context(), opts, status)
	if !flagWatch {
		return err
	}
	if err != nil {
		fmt.Fprintf(status, "Error: %s\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	w, err := newWatcher(opts.Files, func(ctx context.Context) error {
		return extract(ctx, opts, status)
	}, status)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(status, "Watching %d files (Ctrl-C to stop)\n", len(opts.Files))
	return w.Watch(ctx)
}

// extract runs one extraction and writes its output, reporting a summary
// to status.
func extract(ctx context.Context, opts extractOptions, status io.Writer) error {
	start := time.Now()

	cat, err := runExtraction(ctx, opts)
	if err != nil {
		return err
	}

	written, err := writeCatalog(cat, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(status, "Extracted %d declarations from %d files in %s\n",
		cat.Len(), len(opts.Files), time.Since(start).Round(time.Millisecond))
	formatSummaryText(status, cat)
	for _, path := range written {
		fmt.Fprintf(status, "Wrote %s\n", path)
	}
	return nil
}

func validateOutput(opts extractOptions) error {
	if opts.Format == config.FormatSQLite {
		if opts.Split {
			return fmt.Errorf("--split cannot be used with the sqlite format")
		}
		return nil
	}
	_, err := cdecl.ParseFormat(opts.Format)
	return err
}

// writeCatalog writes cat as opts describe and returns the paths written.
func writeCatalog(cat *cdecl.Catalog, opts extractOptions) ([]string, error) {
	if opts.Format == config.FormatSQLite {
		out := opts.Out
		if out == "" {
			out = "catalog.db"
		}
		if err := cdecl.SaveSQLite(cat, out); err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	format, err := cdecl.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.Split {
		dir := opts.Out
		if dir == "" {
			dir = "."
		}
		written, ok := cdecl.ExportSets(cat, dir, format)
		if !ok {
			return written, fmt.Errorf("writing sets to %s failed", dir)
		}
		return written, nil
	}

	out := opts.Out
	if out == "" {
		out = "catalog" + format.Ext()
	}
	if !cdecl.ExportCatalog(cat, out, format) {
		return nil, fmt.Errorf("writing %s failed", out)
	}
	return []string{out}, nil
}

// --- script ---

var (
	flagCatalog    string
	flagScriptsDir string
)

var scriptCmd = &cobra.Command{
	Use:   "script <file.risor> [files...]",
	Short: "Run a Risor script over an extracted catalog",
	Long:  "Extracts the given files (or loads --catalog) and runs a Risor script with the catalog exposed as globals. Script output from emit() goes to stdout.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScript,
}

func init() {
	addExtractionFlags(scriptCmd)
	scriptCmd.Flags().StringVar(&flagCatalog, "catalog", "", "load a previously written catalog instead of extracting")
	scriptCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "directory for Risor imports (default: the script's directory)")
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := resolveOptions(cmd, args[1:], cfg)
	var cat *cdecl.Catalog
	if flagCatalog != "" {
		cat, err = loadCatalog(flagCatalog)
	} else {
		cat, err = runExtraction(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}

	scriptPath := args[0]
	dir := flagScriptsDir
	if dir == "" {
		dir = cfg.Scripts.Dir
	}
	if dir == "" {
		dir = filepath.Dir(scriptPath)
	}

	rt := runtime.NewRuntime(cat, cmd.OutOrStdout(),
		runtime.WithScriptsDir(dir),
		runtime.WithParseArgs(opts.Args...),
	)
	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", scriptPath, err)
	}
	return rt.RunScript(cmd.Context(), abs, nil)
}

// loadCatalog reads a catalog file, picking the decoder from its
// extension: .db and .sqlite are SQLite stores, anything else goes through
// ParseFormat.
func loadCatalog(path string) (*cdecl.Catalog, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "db", "sqlite", "sqlite3":
		return cdecl.LoadSQLite(path)
	case "bin":
		ext = "binary"
	}
	format, err := cdecl.ParseFormat(ext)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	cat := cdecl.ImportCatalog(path, format)
	if cat == nil {
		return nil, fmt.Errorf("catalog %s could not be read", path)
	}
	return cat, nil
}

// --- list ---

var flagKind string

var listCmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "Print extracted declarations as a table",
	RunE:  runList,
}

func init() {
	addExtractionFlags(listCmd)
	listCmd.Flags().StringVar(&flagKind, "kind", "", "only list one set: enums|structs|functions|typedefs|functionpointers|macros")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := validateKind(flagKind); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := runExtraction(cmd.Context(), resolveOptions(cmd, args, cfg))
	if err != nil {
		return err
	}
	formatEntitiesText(cmd.OutOrStdout(), cat, cdecl.Kind(flagKind))
	return nil
}

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default " + config.FileName,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		path, err := config.SaveDefault(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		return nil
	},
}
