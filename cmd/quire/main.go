package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quireapp/quire/internal/bookmarks"
	"github.com/quireapp/quire/internal/config"
	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc/pdf"
	"github.com/quireapp/quire/internal/tui"
	"github.com/quireapp/quire/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	flagConfig    string
	flagDB        string
	flagLogLevel  string
	flagQuiet     bool
	flagExportOut string
)

var rootCmd = &cobra.Command{
	Use:   "quire [file.pdf]",
	Short: "Terminal document viewer",
	Long: `quire opens PDF documents in the terminal as facing-page spreads
or a continuous scroll, with bookmarks and reading positions kept
between sessions. Run it with a document path, or without one to get
a file picker.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runViewer,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("quire %s\n", Version)
		fmt.Println("Terminal document viewer")
		fmt.Println("github.com/quireapp/quire")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate default config file",
	Run: func(_ *cobra.Command, _ []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "quire", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Export or import bookmarks without opening the viewer",
}

var bookmarksExportCmd = &cobra.Command{
	Use:   "export <file.pdf>",
	Short: "Write a document's bookmarks to an interchange file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		docPath, err := validation.NewDocumentValidator().ValidateAndResolve(args[0])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.Load(docPath)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("no bookmarks for %s", filepath.Base(docPath))
		}

		data, err := bookmarks.Export(list)
		if err != nil {
			return err
		}

		out := flagExportOut
		if out == "" {
			out = docPath + ".bookmarks.json"
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("Exported %d bookmarks to %s\n", len(list), out)
		return nil
	},
}

var bookmarksImportCmd = &cobra.Command{
	Use:   "import <file.pdf> <bookmarks.json>",
	Short: "Merge bookmarks from an interchange file into a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		docPath, err := validation.NewDocumentValidator().ValidateAndResolve(args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		added, err := store.Import(docPath, data)
		if err != nil {
			return err
		}
		if added == 1 {
			fmt.Println("Imported 1 bookmark")
		} else {
			fmt.Printf("Imported %d bookmarks\n", added)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Path to bookmark database (overrides config)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Skip startup banner")
	bookmarksExportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output file (default: <file>.bookmarks.json)")

	configCmd.AddCommand(configGenCmd)
	bookmarksCmd.AddCommand(bookmarksExportCmd, bookmarksImportCmd)
	rootCmd.AddCommand(versionCmd, configCmd, bookmarksCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagDB != "" {
		path, err := validation.NewPermissivePathHandler().GetSecureDBPath(flagDB)
		if err != nil {
			return nil, fmt.Errorf("database path: %w", err)
		}
		cfg.Database.Path = path
	}
	return cfg, nil
}

func openStore() (*bookmarks.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := bookmarks.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening bookmark store: %w", err)
	}
	return store, nil
}

func runViewer(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(level), cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
	}
	defer debuglog.Close()

	var docPath string
	if len(args) == 1 {
		docPath, err = validation.NewDocumentValidator().ValidateAndResolve(args[0])
		if err != nil {
			return err
		}
	}

	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	store, err := bookmarks.NewStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening bookmark store: %w", err)
	}
	defer store.Close()

	debuglog.Infof("starting viewer version=%s doc=%q", Version, docPath)

	app := tui.NewApp(pdf.NewEngine(), store, cfg, docPath)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
