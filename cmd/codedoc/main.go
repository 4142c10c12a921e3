package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/codedoc-go/internal/app"
	"github.com/quantmind-br/codedoc-go/internal/config"
	"github.com/quantmind-br/codedoc-go/internal/document"
	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/utils"
	"github.com/quantmind-br/codedoc-go/pkg/version"
)

// Dependencies for testing
var (
	osStat     = os.Stat
	httpClient = &http.Client{Timeout: 5 * time.Second}
	forgeHosts = []string{"https://github.com", "https://gitlab.com"}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	cfgFile string
	verbose bool
	clone   bool
	noProg  bool
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "codedoc <path_or_repo_url> <output_file>",
		Short: "Export a source tree into a Word document",
		Long: `codedoc walks a local directory, or downloads a GitHub/GitLab repository,
and writes every recognized source file into a single .docx document: a title,
then one heading per file followed by its code in a monospace paragraph.

Remote URLs may point at a branch with /tree/<ref>. Blob URLs
(/blob/<ref>/<path>) export the whole repository at the default ref.`,
		Version:       version.Short(),
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// argument errors print usage, runtime errors do not
			cmd.SilenceUsage = true
			return runExport(cmd, opts, args[0], args[1])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ~/.codedoc/config.yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	local := cmd.Flags()
	local.String("ref", config.DefaultRef, "Default branch when the URL has no /tree/<ref>")
	local.Bool("keep-temp", false, "Keep the temporary download directory")
	local.BoolVar(&opts.clone, "clone", false, "Shallow-clone with git instead of downloading the archive")
	local.Bool("cache", false, "Cache downloaded archives")
	local.Duration("cache-ttl", config.DefaultCacheTTL, "Archive cache TTL")
	local.Int("retries", config.DefaultMaxRetries, "Retries for transient download failures")
	local.Duration("timeout", config.DefaultTimeout, "Download timeout")
	local.String("user-agent", "", "Custom User-Agent for downloads")
	local.StringSlice("ext", nil, "File extensions to export (default .py,.cpp,.c,.java,.js,.ts,.html,.css,.php)")
	local.StringSlice("exclude-dir", nil, "Directory names to skip")
	local.String("title", config.DefaultTitle, "Document title")
	local.Int("checkpoint", config.DefaultCheckpointEvery, "Save the document after every N files (0 = only at the end)")
	local.Bool("json-summary", false, "Also write <output>.json describing the export")
	local.Bool("dry-run", false, "Walk and highlight without writing files")
	local.BoolVar(&opts.noProg, "no-progress", false, "Disable progress bars")

	bindings := map[string]string{
		"acquire.default_ref":     "ref",
		"acquire.keep_temp":       "keep-temp",
		"acquire.max_retries":     "retries",
		"acquire.timeout":         "timeout",
		"acquire.user_agent":      "user-agent",
		"cache.enabled":           "cache",
		"cache.ttl":               "cache-ttl",
		"walk.extensions":         "ext",
		"walk.exclude_dirs":       "exclude-dir",
		"output.title":            "title",
		"output.checkpoint_every": "checkpoint",
		"output.json_summary":     "json-summary",
		"output.dry_run":          "dry-run",
	}
	for key, name := range bindings {
		_ = opts.v.BindPFlag(key, local.Lookup(name))
	}

	cmd.AddCommand(newVersionCmd(), newInspectCmd(), newConfigCmd(opts), newDoctorCmd(opts))
	return cmd
}

// loadConfig reads configuration and applies flags that do not map onto a
// single key
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.cfgFile != "" {
		opts.v.SetConfigFile(opts.cfgFile)
	}
	cfg, err := config.LoadFrom(opts.v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.clone {
		cfg.Acquire.Method = domain.MethodClone
	}
	if opts.noProg {
		cfg.Output.Progress = false
	}
	return cfg, nil
}

func runExport(cmd *cobra.Command, opts *rootOptions, source, outputPath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: opts.verbose,
	})

	exporter, err := app.NewExporter(app.ExporterOptions{
		Config:         cfg,
		Verbose:        opts.verbose,
		Logger:         logger,
		ProgressOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}
	defer exporter.Close()

	summary, err := exporter.Run(ctx, source, outputPath)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("Interrupted")
		}
		return err
	}

	if !cfg.Output.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files to %s\n", len(summary.Files), summary.Output)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d files would be written to %s\n", len(summary.Files), summary.Output)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "List the title and file headings of an exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			paragraphs, err := document.ReadParagraphs(args[0])
			if err != nil {
				return err
			}
			return printInspect(cmd.OutOrStdout(), paragraphs)
		},
	}
}

func printInspect(w io.Writer, paragraphs []document.Paragraph) error {
	for _, p := range paragraphs {
		switch {
		case p.Style == document.StyleTitle:
			fmt.Fprintf(w, "# %s\n", p.Text)
		case document.HeadingLevel(p.Style) > 0:
			fmt.Fprintf(w, "  %s\n", p.Text)
		}
	}
	_, err := fmt.Fprintf(w, "%d files\n", len(document.Headings(paragraphs)))
	return err
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity, configuration and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking environment...")
			allPassed := true

			for _, host := range forgeHosts {
				fmt.Fprintf(out, "  %s: ", host)
				if checkReachable(cmd.Context(), host) {
					fmt.Fprintln(out, "OK")
				} else {
					fmt.Fprintln(out, "FAILED (remote repositories will be unavailable)")
					allPassed = false
				}
			}

			fmt.Fprint(out, "  Temp directory: ")
			if checkWritable(os.TempDir()) {
				fmt.Fprintf(out, "OK (%s)\n", os.TempDir())
			} else {
				fmt.Fprintln(out, "FAILED")
				allPassed = false
			}

			fmt.Fprint(out, "  Config file: ")
			cfg, err := loadConfig(opts)
			if err != nil {
				fmt.Fprintf(out, "WARN (%v)\n", err)
				cfg = config.Default()
			} else if used := opts.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "OK (%s)\n", used)
			} else {
				fmt.Fprintln(out, "OK (defaults)")
			}

			fmt.Fprint(out, "  Cache directory: ")
			cacheDir := utils.ExpandPath(cfg.Cache.Directory)
			if checkDir(cacheDir) {
				fmt.Fprintf(out, "OK (%s)\n", cacheDir)
			} else {
				fmt.Fprintln(out, "WARN (will be created on first use)")
			}

			fmt.Fprintln(out)
			if allPassed {
				fmt.Fprintln(out, "All critical checks passed!")
			} else {
				fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
			}
			return nil
		},
	}
}

// checkReachable sends a HEAD request to url
func checkReachable(ctx context.Context, url string) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// checkWritable creates and removes a scratch file in dir
func checkWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".codedoc_writecheck_*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	return os.Remove(name) == nil
}

func checkDir(path string) bool {
	info, err := osStat(filepath.Clean(path))
	if err != nil {
		return false
	}
	return info.IsDir()
}
