package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"undisorder/internal/app"
	"undisorder/internal/config"
	"undisorder/internal/geocode"
	"undisorder/internal/importer"
	"undisorder/internal/media"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Import", "Rebuild");
// mutating commands take the index lock for their whole lifetime.
func newApp(operation string, mutating bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cfg, operation, mutating)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"], defaults["home_dir"], defaults["data_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "undisorder",
	Short: "Import scattered media into organized, deduplicated target trees",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["home_dir"], defaults["data_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Data Dir: %s\n", defaults["data_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Data Dir:      %s\n", cfg.DataDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Images Target: %s\n", cfg.Targets.Images)
		fmt.Printf("Video Target:  %s\n", cfg.Targets.Video)
		fmt.Printf("Audio Target:  %s\n", cfg.Targets.Audio)
		fmt.Printf("Geocoding:     %s\n", cfg.Geocoding.Mode)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import SOURCE",
	Short: "Import media files from a source directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := importer.Options{Source: args[0]}
		opts.ImagesTarget, _ = cmd.Flags().GetString("images-target")
		opts.VideoTarget, _ = cmd.Flags().GetString("video-target")
		opts.AudioTarget, _ = cmd.Flags().GetString("audio-target")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.Move, _ = cmd.Flags().GetBool("move")
		opts.Update, _ = cmd.Flags().GetBool("update")
		opts.Interactive, _ = cmd.Flags().GetBool("interactive")
		opts.Select, _ = cmd.Flags().GetBool("select")
		opts.Identify, _ = cmd.Flags().GetBool("identify")
		opts.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		opts.ExcludeDir, _ = cmd.Flags().GetStringSlice("exclude-dir")
		opts.BatchSize, _ = cmd.Flags().GetInt("batch-size")
		opts.AudioBatchSize, _ = cmd.Flags().GetInt("audio-batch-size")
		opts.HashWorkers, _ = cmd.Flags().GetInt("hash-workers")
		geocoding, _ := cmd.Flags().GetString("geocoding")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if geocoding != "" {
			if !geocode.ValidMode(geocoding) {
				return fmt.Errorf("geocoding mode %q is not supported (use \"off\" or \"online\")", geocoding)
			}
			cfg.Geocoding.Mode = geocoding
		}

		a, err := app.NewApp(cfg, "Import", !opts.DryRun)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		sum, err := a.Import(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Scanned %d media file(s)\n", sum.Scanned)
		fmt.Printf("Imported %d, updated %d, skipped %d, source duplicates %d\n",
			sum.Imported, sum.Updated, sum.Skipped, sum.SourceDuplicates)
		if sum.Failed > 0 {
			fmt.Printf("Failed: %d file(s) in %d batch(es)\n", sum.Failed, sum.FailedBatches)
		}
		if sum.FailedBatches > 0 {
			return fmt.Errorf("%d batch(es) failed", sum.FailedBatches)
		}
		return nil
	},
}

// dupes command
var dupesCmd = &cobra.Command{
	Use:   "dupes DIR",
	Short: "Find byte-identical files under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		del, _ := cmd.Flags().GetBool("delete")

		a, err := newApp("DeleteDupes", del)
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.Dupes(args[0])
		if err != nil {
			return err
		}

		if len(groups) == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}

		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			for i, p := range g.Paths {
				h := ""
				size := ""
				if i == 0 {
					h = g.Hash[:12]
					size = media.FormatSize(g.FileSize)
				}
				rows = append(rows, []string{h, size, p})
			}
		}
		fmt.Println(renderTable(
			[]string{"Hash", "Size", "Path"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))

		if del {
			deleted, err := a.DeleteDupes(groups)
			if err != nil {
				return fmt.Errorf("deleting duplicates: %w", err)
			}
			fmt.Printf("Deleted %d file(s), kept the oldest copy of each group\n", len(deleted))
		}
		return nil
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check TARGET",
	Short: "Verify a target directory against the hash index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Check", false)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Check(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Checked %d file(s)\n", report.Files)

		if len(report.Duplicates) > 0 {
			rows := make([][]string, 0, len(report.Duplicates))
			for _, g := range report.Duplicates {
				for i, p := range g.Paths {
					h := ""
					if i == 0 {
						h = g.Hash[:12]
					}
					rows = append(rows, []string{h, p})
				}
			}
			fmt.Println(renderTable([]string{"Hash", "Path"}, rows, nil))
		}
		if len(report.Unindexed) > 0 {
			fmt.Printf("%d file(s) not in the index:\n", len(report.Unindexed))
			for _, p := range report.Unindexed {
				fmt.Printf("  %s\n", p)
			}
		}

		if len(report.Duplicates) == 0 && len(report.Unindexed) == 0 {
			fmt.Println("Target is consistent with the index.")
			return nil
		}
		return fmt.Errorf("target has inconsistencies")
	},
}

// hashdb command
var hashdbCmd = &cobra.Command{
	Use:   "hashdb TARGET",
	Short: "Rebuild the hash index from the files in a target directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rebuild", true)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Rebuild(args[0])
		if err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		fmt.Printf("Indexed %d file(s)\n", n)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History", false)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			}
			rows = append(rows, []string{
				strconv.FormatInt(r.ID, 10),
				r.Operation,
				r.Parameters,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
			})
		}
		fmt.Println(renderTable(
			[]string{"ID", "Operation", "Parameters", "Started", "Status", "Duration"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		))
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// import flags
	importCmd.Flags().String("images-target", "", "Target root for photos (overrides config)")
	importCmd.Flags().String("video-target", "", "Target root for videos (overrides config)")
	importCmd.Flags().String("audio-target", "", "Target root for audio (overrides config)")
	importCmd.Flags().Bool("dry-run", false, "Report decisions without transferring or indexing")
	importCmd.Flags().Bool("move", false, "Move files instead of copying")
	importCmd.Flags().Bool("update", false, "Re-import previously imported files whose content changed")
	importCmd.Flags().BoolP("interactive", "i", false, "Confirm directory names and updates")
	importCmd.Flags().Bool("select", false, "Choose source directories before importing")
	importCmd.Flags().Bool("identify", false, "Fingerprint-identify untagged audio files")
	importCmd.Flags().String("geocoding", "", "Geocoding mode: off or online (overrides config)")
	importCmd.Flags().StringSlice("exclude", nil, "Filename glob patterns to skip")
	importCmd.Flags().StringSlice("exclude-dir", nil, "Directory name glob patterns to skip")
	importCmd.Flags().Int("batch-size", 0, "Photo/video files per batch (overrides config)")
	importCmd.Flags().Int("audio-batch-size", 0, "Audio files per batch (overrides config)")
	importCmd.Flags().Int("hash-workers", 0, "Concurrent hashing workers (0 = number of CPUs)")

	dupesCmd.Flags().Bool("delete", false, "Delete all but the oldest copy of each group")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(hashdbCmd)
	rootCmd.AddCommand(historyCmd)
}
