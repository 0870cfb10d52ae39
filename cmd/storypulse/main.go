package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storypulse/storypulse/internal/collect"
	"github.com/storypulse/storypulse/internal/config"
	"github.com/storypulse/storypulse/internal/database"
	"github.com/storypulse/storypulse/internal/pipeline"
	"github.com/storypulse/storypulse/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "storypulse",
	Short:   "Story tension and cause-effect analysis",
	Long:    "Storypulse tracks news stories over time, scores their narrative tension, and maps their cause-effect structure.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(storiesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("storypulse", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/storypulse/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, the intelligence API key, and category weights.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Stories:")
		fmt.Printf("  Total tracked: %d\n", stats.TotalStories)
		fmt.Printf("  Active: %d\n", stats.ActiveStories)
		fmt.Println("\nMaterial:")
		fmt.Printf("  Timeline events: %d\n", stats.TotalEvents)
		fmt.Printf("  Predictions: %d\n", stats.Predictions)
		fmt.Printf("  Contradictions: %d\n", stats.Contradictions)
		fmt.Printf("  Relations: %d\n", stats.Relations)
		fmt.Println("\nOutput:")
		fmt.Printf("  Snapshots: %d\n", stats.Snapshots)
		return nil
	},
}

// --- collect command ---

var collectStory string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect events and intel for tracked stories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stories, err := selectStories(db, collectStory)
		if err != nil {
			return err
		}

		collector := collect.NewCollector(cfg, db, collectDaysBack)
		for i := range stories {
			story := &stories[i]
			fmt.Printf("Collecting for %s...\n", story.Slug)
			result := collector.Collect(story)

			fmt.Printf("  Total found: %d\n", result.TotalFound)
			fmt.Printf("  New events: %d\n", result.NewEvents)
			fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

			if len(result.Sources) > 0 {
				// Sort sources by count descending
				type kv struct {
					key string
					val int
				}
				var sorted []kv
				for k, v := range result.Sources {
					sorted = append(sorted, kv{k, v})
				}
				sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
				fmt.Println("  Events by source:")
				for _, s := range sorted {
					fmt.Printf("    %s: %d\n", s.key, s.val)
				}
			}
		}
		return nil
	},
}

var collectDaysBack int

func init() {
	collectCmd.Flags().StringVar(&collectStory, "story", "", "Collect for a single story slug")
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 7, "Lookback window (days)")
}

// --- run command ---

var (
	dryRun      bool
	runDaysBack int
	runStory    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> enrich -> reconcile -> layout -> score -> snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stories, err := selectStories(db, runStory)
		if err != nil {
			return err
		}

		pipe := pipeline.New(cfg, db, runDaysBack)
		ctx := context.Background()

		for i := range stories {
			story := &stories[i]
			fmt.Printf("\n=== %s ===\n", story.Slug)

			var result *pipeline.Result
			if dryRun {
				result = pipe.DryRun(story)
			} else {
				result = pipe.RunStory(ctx, story)
			}

			for j, step := range result.Steps {
				fmt.Printf("\nStep %d/6: %s\n", j+1, step.Name)
				if step.Err != nil {
					fmt.Printf("  Error: %v\n", step.Err)
				} else {
					fmt.Printf("  %s\n", step.Summary)
				}
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'storypulse serve' to view the stories.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&runDaysBack, "days-back", 7, "Lookback window (days)")
	runCmd.Flags().StringVar(&runStory, "story", "", "Run for a single story slug")
}

// selectStories resolves the target set: one story by slug, or every active
// story.
func selectStories(db *database.DB, slug string) ([]database.Story, error) {
	if slug != "" {
		story, err := db.GetStoryBySlug(slug)
		if err != nil {
			return nil, err
		}
		if story == nil {
			return nil, fmt.Errorf("story %q not found", slug)
		}
		return []database.Story{*story}, nil
	}

	stories, err := db.GetActiveStories()
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, fmt.Errorf("no active stories; add one with 'storypulse stories add'")
	}
	return stories, nil
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- stories command ---

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "Manage tracked stories",
}

var storiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked stories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stories, err := db.GetAllStories()
		if err != nil {
			return err
		}

		if len(stories) == 0 {
			fmt.Println("No stories tracked. Add one with: storypulse stories add")
			return nil
		}

		fmt.Println("Tracked Stories:")
		fmt.Println()
		for _, s := range stories {
			icon := " "
			if s.IsActive {
				icon = "*"
			}
			fmt.Printf("  [%d] %s %s (%s, %s)\n", s.ID, icon, s.Title, s.Slug, s.Category)
			if len(s.Keywords) > 0 {
				fmt.Printf("        keywords: %s\n", strings.Join(s.Keywords, ", "))
			}
		}
		return nil
	},
}

var (
	addCategory string
	addKeywords []string
)

var storiesAddCmd = &cobra.Command{
	Use:   "add [slug] [title]",
	Short: "Track a new story",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		slug, title := args[0], args[1]
		id, err := db.InsertStory(slug, title, addCategory, addKeywords)
		if err != nil {
			return err
		}
		if id == 0 {
			return fmt.Errorf("story %q already exists", slug)
		}
		fmt.Printf("Added story [%d]: %s\n", id, title)
		return nil
	},
}

var storiesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a tracked story and its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid story ID: %s", args[0])
		}

		story, err := db.GetStory(id)
		if err != nil {
			return err
		}
		if story == nil {
			return fmt.Errorf("story %d not found", id)
		}

		if err := db.DeleteStory(id); err != nil {
			return err
		}
		fmt.Printf("Removed story [%d]: %s\n", id, story.Title)
		return nil
	},
}

var storiesToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Toggle a story's active state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid story ID: %s", args[0])
		}

		story, err := db.GetStory(id)
		if err != nil {
			return err
		}
		if story == nil {
			return fmt.Errorf("story %d not found", id)
		}

		if err := db.ToggleStory(id); err != nil {
			return err
		}
		newState := "paused"
		if !story.IsActive {
			newState = "active"
		}
		fmt.Printf("Story [%d] %s: %s\n", id, story.Title, newState)
		return nil
	},
}

func init() {
	storiesAddCmd.Flags().StringVar(&addCategory, "category", "politics", "Story category for tension weighting")
	storiesAddCmd.Flags().StringSliceVar(&addKeywords, "keywords", nil, "Keywords used to match feed entries")

	storiesCmd.AddCommand(storiesListCmd)
	storiesCmd.AddCommand(storiesAddCmd)
	storiesCmd.AddCommand(storiesRemoveCmd)
	storiesCmd.AddCommand(storiesToggleCmd)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "storypulse.db")
	return database.Open(dbPath)
}
