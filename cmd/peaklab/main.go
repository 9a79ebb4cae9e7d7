package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peaklab/internal/bootstrap"
	analysisdto "peaklab/internal/modules/analysis/dto"
	fitdomain "peaklab/internal/modules/fit/domain"
	"peaklab/internal/platform/config"
	"peaklab/internal/platform/kind"
	"peaklab/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	workspace string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "peaklab",
		Short:         "Peak analysis for voltammetry and Raman measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.workspace, "workspace", ".", "workspace holding data/ and saved_data/")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides peaklab.yaml)")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newTreeCmd(opts))
	root.AddCommand(newScansCmd(opts))
	root.AddCommand(newFitCmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	root.AddCommand(newPeaksCmd(opts))
	root.AddCommand(newPlotCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	workspace, err := filepath.Abs(opts.workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	cfg, err := config.New(workspace)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(logging.WithLevel(level), logging.WithDevelopment(cfg.Development))
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("workspace loaded", zap.String("workspace", workspace), zap.String("db", cfg.DBPath))
	return app, nil
}

// withApp loads the app, runs fn and closes the app again.
func withApp(opts *rootOptions, fn func(app *bootstrap.App) error) (err error) {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(app)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the data trees and pick peaks in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(cmd.Context(), app)
			})
		},
	}
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var domain string
	var saved bool
	tree := &cobra.Command{
		Use:   "tree",
		Short: "List raw data or saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domains := []string{domain}
			if domain == "" {
				domains = nil
				for _, k := range kind.All() {
					domains = append(domains, k.String())
				}
			}
			return withApp(opts, func(app *bootstrap.App) error {
				for _, d := range domains {
					out, err := app.TreeCLI.List(cmd.Context(), d, saved)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", out.Tree, out.Root)
					if len(out.Nodes) == 0 {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  empty")
					}
					for _, n := range out.Nodes {
						suffix := ""
						if n.Kind == "directory" {
							suffix = "/"
						}
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s\n", strings.Repeat("  ", n.Depth), n.Name, suffix)
					}
				}
				return nil
			})
		},
	}
	tree.Flags().StringVar(&domain, "domain", "", "raman|nova (default both)")
	tree.Flags().BoolVar(&saved, "saved", false, "list saved sessions instead of raw data")

	var keepFiles bool
	del := &cobra.Command{
		Use:   "delete <path>",
		Short: "Remove a file or directory from its tree and from disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TreeCLI.Delete(cmd.Context(), args[0], !keepFiles)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: detached=%d deleted=%d removed_dirs=%d\n", out.Tree, len(out.Pruned), len(out.Deleted), len(out.RemovedDirs))
				for _, f := range out.Failures {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "failed %s: %s\n", f.Path, f.Error)
				}
				return nil
			})
		},
	}
	del.Flags().BoolVar(&keepFiles, "keep-files", false, "only detach the node, leave files on disk")
	tree.AddCommand(del)
	return tree
}

func newScansCmd(opts *rootOptions) *cobra.Command {
	scans := &cobra.Command{Use: "scans", Short: "Scan range codec"}
	scans.AddCommand(&cobra.Command{
		Use:   "encode <n>...",
		Short: "Collapse scan numbers into range text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers := make([]int, 0, len(args))
			for _, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("scan %q is not a number", a)
				}
				numbers = append(numbers, n)
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ScanCLI.Encode(cmd.Context(), numbers)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Text)
				return nil
			})
		},
	})
	scans.AddCommand(&cobra.Command{
		Use:   "decode <text>",
		Short: "Expand range text into scan numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ScanCLI.Decode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(out.Scans))
				for _, s := range out.Scans {
					parts = append(parts, strconv.Itoa(s))
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
				return nil
			})
		},
	})
	return scans
}

func newFitCmd(opts *rootOptions) *cobra.Command {
	var from, to, scan int
	var model string
	fit := &cobra.Command{
		Use:   "fit <raw> --from i --to j",
		Short: "Fit a peak between two sample indices of a raw file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				k, err := app.Layout.KindOf(args[0])
				if err != nil {
					return err
				}
				data, err := app.MeasurementCLI.Open(cmd.Context(), args[0], k.String())
				if err != nil {
					return err
				}
				key := 0
				if k.MultiScan() {
					key = scan
				}
				curve, ok := data.Curves[key]
				if !ok {
					return fmt.Errorf("%s has no scan %d", args[0], scan)
				}
				if model == "" {
					model = string(fitdomain.ModelFor(k))
				}
				out, err := app.FitCLI.Fit(cmd.Context(), curve.X, curve.Y, from, to, model)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "peak=%.2f model=%s amplitude=%g width=%g centre=%g inverted=%t\n", out.Peak, out.Model, out.Amplitude, out.Width, out.Centre, out.Inverted)
				return nil
			})
		},
	}
	fit.Flags().IntVar(&from, "from", -1, "first boundary sample index")
	fit.Flags().IntVar(&to, "to", -1, "second boundary sample index")
	fit.Flags().IntVar(&scan, "scan", 1, "scan number (nova)")
	fit.Flags().StringVar(&model, "model", "", "lorentzian|gaussian (default by domain)")
	_ = fit.MarkFlagRequired("from")
	_ = fit.MarkFlagRequired("to")
	return fit
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Saved analysis sessions"}

	var scanText string
	var peaks []string
	save := &cobra.Command{
		Use:   "save <raw> [--scans text] --peak i:j ...",
		Short: "Fit the given peaks on a raw file and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds, err := parseBounds(peaks)
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				st, err := app.AnalysisCLI.Annotate(cmd.Context(), args[0], scanText, bounds)
				if err != nil {
					return err
				}
				printState(cmd, st)
				if s := st.LastSave; s != nil {
					switch {
					case s.StaleRemoved:
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nothing to save, removed stale %s\n", s.Path)
					case s.Outcome == "saved":
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", s.Path)
					default:
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to save")
					}
				}
				return nil
			})
		},
	}
	save.Flags().StringVar(&scanText, "scans", "", "scan range, e.g. 1-3,7 (nova)")
	save.Flags().StringArrayVar(&peaks, "peak", nil, "peak boundary as i:j sample indices (repeatable)")

	show := &cobra.Command{
		Use:   "show <saved>",
		Short: "Reopen a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				st, err := app.AnalysisCLI.Open(cmd.Context(), args[0], "")
				if err != nil {
					return err
				}
				printState(cmd, st)
				return nil
			})
		},
	}

	session.AddCommand(save, show)
	return session
}

func parseBounds(values []string) ([][2]int, error) {
	out := make([][2]int, 0, len(values))
	for _, v := range values {
		a, b, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("peak %q: want i:j", v)
		}
		i, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, fmt.Errorf("peak %q: %w", v, err)
		}
		j, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return nil, fmt.Errorf("peak %q: %w", v, err)
		}
		out = append(out, [2]int{i, j})
	}
	return out, nil
}

func printState(cmd *cobra.Command, st analysisdto.StateOutput) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "source: %s\ndomain: %s\n", st.SourcePath, st.Kind)
	if st.Kind == kind.Nova.String() {
		_, _ = fmt.Fprintf(w, "scans: %s\n", st.ScanText)
	}
	for n, p := range st.Peaks {
		_, _ = fmt.Fprintf(w, "peak %d: bounds=%d:%d x=%s..%s value=%s\n", n+1, p.Bound1, p.Bound2, p.X1, p.X2, p.ValueText)
	}
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite peak index from saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindex completed: sessions=%d peaks=%d skipped=%d\n", out.Sessions, out.Peaks, len(out.Skipped))
				for _, s := range out.Skipped {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", s)
				}
				return nil
			})
		},
	}
}

func newPeaksCmd(opts *rootOptions) *cobra.Command {
	peaks := &cobra.Command{Use: "peaks", Short: "Query indexed peaks"}

	var domain string
	list := &cobra.Command{
		Use:   "list",
		Short: "List indexed peaks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				rows, err := app.SessionCLI.Peaks(cmd.Context(), domain)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no peaks indexed")
					return nil
				}
				for _, r := range rows {
					value := "N/A"
					if r.Available {
						value = strconv.FormatFloat(r.Value, 'f', 2, 64)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t#%d\t%d:%d\t%s\n", r.Kind, r.SessionPath, r.Ordinal, r.Bound1, r.Bound2, value)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&domain, "domain", "", "raman|nova (default both)")

	export := &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Write indexed peaks to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Export(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d peaks to %s\n", out.Rows, out.Path)
				return nil
			})
		},
	}

	peaks.AddCommand(list, export)
	return peaks
}

func newPlotCmd(opts *rootOptions) *cobra.Command {
	var out, scanText string
	plot := &cobra.Command{
		Use:   "plot <raw|saved> --out file.png",
		Short: "Render curves and fitted peaks to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				return writePlot(cmd.Context(), app, args[0], scanText, out)
			})
		},
	}
	plot.Flags().StringVar(&out, "out", "", "output PNG path")
	plot.Flags().StringVar(&scanText, "scans", "", "scan range to draw (nova)")
	_ = plot.MarkFlagRequired("out")
	return plot
}

func writePlot(ctx context.Context, app *bootstrap.App, path, scanText, out string) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return app.AnalysisCLI.Plot(ctx, path, scanText, f)
}
