package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jinwsy/blood-pressure/internal/adapters/terminal"
	"github.com/jinwsy/blood-pressure/internal/domain"
	"github.com/jinwsy/blood-pressure/internal/export"
	"github.com/jinwsy/blood-pressure/internal/ports"
	"github.com/jinwsy/blood-pressure/internal/store"
)

// readingFlags are the entry form fields shared by add and edit
type readingFlags struct {
	at        string
	systolic  string
	diastolic string
	pulse     string
	note      string
	yes       bool
}

func (f *readingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.at, "at", "", "Measurement time (RFC3339 or 2006-01-02T15:04 local); default now")
	cmd.Flags().StringVarP(&f.systolic, "systolic", "s", "", "Systolic pressure in mmHg")
	cmd.Flags().StringVarP(&f.diastolic, "diastolic", "d", "", "Diastolic pressure in mmHg")
	cmd.Flags().StringVarP(&f.pulse, "pulse", "p", "", "Pulse in bpm (optional)")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "Free-form note (optional)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Save values outside the usual range without asking")
}

// overlay copies the flags the user actually set onto in
func (f *readingFlags) overlay(cmd *cobra.Command, in domain.ReadingInput) domain.ReadingInput {
	changed := cmd.Flags().Changed
	if changed("at") {
		in.Timestamp = f.at
	}
	if changed("systolic") {
		in.Systolic = f.systolic
	}
	if changed("diastolic") {
		in.Diastolic = f.diastolic
	}
	if changed("pulse") {
		in.Pulse = f.pulse
	}
	if changed("note") {
		in.Note = f.note
	}
	return in
}

func newForm(cmd *cobra.Command, s *store.Store, assumeYes bool) *ports.EntryForm {
	confirmer := terminal.NewConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes)
	return ports.NewEntryForm(s, confirmer)
}

func addCmd(config *Config) *cobra.Command {
	var flags readingFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				form := newForm(cmd, s, flags.yes)
				r, err := form.Submit(ctx, flags.overlay(cmd, domain.ReadingInput{}))
				if err != nil {
					return cancelled(cmd.OutOrStdout(), err)
				}
				printSaved(cmd.OutOrStdout(), r)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func editCmd(config *Config) *cobra.Command {
	var flags readingFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing reading; unset flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				form := newForm(cmd, s, flags.yes)
				current, err := form.BeginEdit(ctx, args[0])
				if err != nil {
					return err
				}
				r, err := form.Submit(ctx, flags.overlay(cmd, current))
				if err != nil {
					return cancelled(cmd.OutOrStdout(), err)
				}
				printSaved(cmd.OutOrStdout(), r)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func deleteCmd(config *Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				deleted, err := newForm(cmd, s, yes).Delete(ctx, args[0])
				if err != nil {
					return cancelled(cmd.OutOrStdout(), err)
				}
				if !deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "No reading with id %s.\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func clearCmd(config *Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				cleared, err := newForm(cmd, s, yes).ClearAll(ctx)
				if err != nil {
					return cancelled(cmd.OutOrStdout(), err)
				}
				if !cleared {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All readings deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func listCmd(config *Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List readings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				readings := s.List()
				if limit > 0 && len(readings) > limit {
					readings = readings[:limit]
				}
				return printReadings(cmd.OutOrStdout(), readings, s.Location())
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many readings (0 for all)")
	return cmd
}

func statsCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show averages and the latest category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				printStats(cmd.OutOrStdout(), s.Stats())
				return nil
			})
		},
	}
}

func exportCmd(config *Config) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export readings as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = export.FileName(time.Now(), f)
			}

			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				rows := s.ExportRows()
				if err := writeOutput(cmd, output, func(w io.Writer) error {
					return export.Write(w, f, rows)
				}); err != nil {
					return err
				}
				if output != "-" {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d readings to %s.\n", len(rows), output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Export format (csv, xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (default bp-records_<date>.<format>)")
	return cmd
}

func chartCmd(config *Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the trend chart as an HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, config, func(ctx context.Context, s *store.Store) error {
				series := s.ChartSeries()
				if err := writeOutput(cmd, output, func(w io.Writer) error {
					return export.RenderChart(w, series)
				}); err != nil {
					return err
				}
				if output != "-" {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote chart of %d readings to %s.\n", len(series.Labels), output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "bp-chart.html", "Output file, or - for stdout")
	return cmd
}

// writeOutput streams render to stdout for "-" and to path otherwise
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	if path == "-" {
		return render(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// cancelled turns a declined confirmation into a message instead of an error
func cancelled(w io.Writer, err error) error {
	if errors.Is(err, domain.ErrCancelled) {
		fmt.Fprintln(w, "Cancelled.")
		return nil
	}
	return err
}

func printSaved(w io.Writer, r *domain.Reading) {
	fmt.Fprintf(w, "Saved %s: %d/%d mmHg (%s)\n", r.ID, r.Systolic, r.Diastolic, r.Category())
}

func printReadings(w io.Writer, readings []*domain.Reading, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE/TIME\tSYS\tDIA\tPULSE\tCATEGORY\tNOTE")
	for _, r := range readings {
		pulse := "-"
		if r.Pulse != nil {
			pulse = strconv.Itoa(*r.Pulse)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.Timestamp.In(loc).Format(domain.DisplayTimeLayout),
			r.Systolic,
			r.Diastolic,
			pulse,
			r.Category(),
			r.Note,
		)
	}
	return tw.Flush()
}

func printStats(w io.Writer, stats domain.Stats) {
	avg := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 1, 64)
	}
	last := "-"
	if stats.LastCategory != nil {
		last = stats.LastCategory.String()
	}

	fmt.Fprintf(w, "Readings:       %d\n", stats.Count)
	fmt.Fprintf(w, "Avg systolic:   %s\n", avg(stats.AvgSystolic))
	fmt.Fprintf(w, "Avg diastolic:  %s\n", avg(stats.AvgDiastolic))
	fmt.Fprintf(w, "Last category:  %s\n", last)
}
