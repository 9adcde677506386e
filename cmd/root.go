package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/sb/internal/bisect"
	"github.com/joescharf/sb/internal/dispatch"
	"github.com/joescharf/sb/internal/output"
	"github.com/joescharf/sb/internal/session"
	"github.com/joescharf/sb/internal/store"
	"github.com/joescharf/sb/internal/svn"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui      *output.UI
	history store.Store

	verbose     bool
	workingCopy string
)

var rootCmd = &cobra.Command{
	Use:   "sb",
	Short: "Binary-search Subversion history for the first bad revision",
	Long: `sb narrows down the revision that introduced a defect by binary
search over a working copy's history. Mark one revision bad and one good,
test the revision sb checks out, and repeat; each verdict halves the
remaining candidates.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	canonicalizeArgs()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&workingCopy, "wc", ".", "Working copy path")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/sb/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "sb")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SB")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "sb")

	viper.SetDefault("svn.binary", "svn")
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "sb.db"))
	viper.SetDefault("terms.bad", "")
	viper.SetDefault("terms.good", "")
	viper.SetDefault("run.max_steps", 0)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// canonicalizeArgs rewrites the first non-flag argument to its canonical
// verb so that unique prefixes and a session's custom terms reach the right
// cobra command. Resolution failures are left for cobra to report.
func canonicalizeArgs() {
	args := os.Args[1:]
	skipNext := false
	for i, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if arg == "--wc" || arg == "--config" {
			skipNext = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if strings.HasPrefix(arg, "__") {
			// cobra's hidden completion machinery
			return
		}
		badTerm, goodTerm := sessionTerms(args)
		verb, err := dispatch.Resolve(arg, badTerm, goodTerm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Args[i+1] = verb
		return
	}
}

// sessionTerms peeks at the active session (if any) for custom term names,
// honoring an explicit --wc that precedes the verb.
func sessionTerms(args []string) (string, string) {
	wc := "."
	for i, arg := range args {
		if arg == "--wc" && i+1 < len(args) {
			wc = args[i+1]
		} else if v, ok := strings.CutPrefix(arg, "--wc="); ok {
			wc = v
		}
	}
	// Session records store the absolute working copy path; a relative
	// root would never match it.
	wc, err := filepath.Abs(wc)
	if err != nil {
		return "", ""
	}
	sess, err := session.NewStore(wc).Load()
	if err != nil {
		return "", ""
	}
	return sess.BadTerm, sess.GoodTerm
}

// getApp builds the bisect App for the selected working copy.
func getApp() (*bisect.App, error) {
	wc, err := filepath.Abs(workingCopy)
	if err != nil {
		return nil, fmt.Errorf("resolve working copy path: %w", err)
	}
	oracle := svn.NewClient(viper.GetString("svn.binary"))
	return bisect.New(oracle, session.NewStore(wc), ui), nil
}

// getStore returns the shared history store, initializing it on first call.
func getStore() (store.Store, error) {
	if history != nil {
		return history, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	history = s
	return history, nil
}
