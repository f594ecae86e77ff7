// Package main provides the entry point for the ttscli application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/svm0n/ttscli/internal/pipeline"
	"github.com/svm0n/ttscli/internal/prefs"
	"github.com/svm0n/ttscli/internal/session"
	"github.com/svm0n/ttscli/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	prefsFile  string
	python     string
	debug      bool
	showAll    bool

	rootCmd = &cobra.Command{
		Use:   "ttscli",
		Short: "Convert PDFs, EPUBs and text to natural speech",
		Long: paragraph(
			fmt.Sprintf("\nConvert PDFs, EPUBs and text to %s from an interactive menu.", keyword("natural speech")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	python = viper.GetString("python")
	if python == "" {
		python = pipeline.DefaultPython
	}
	prefsFile = viper.GetString("prefs")
	showAll = viper.GetBool("all")

	if no, _ := cmd.Root().Flags().GetBool("no-autoload"); no {
		viper.Set("autoload", false)
	}
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if d := viper.GetDuration("timeout"); d < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return nil
}

func execute(cmd *cobra.Command, _ []string) error {
	// Read environment for console knobs
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Autoload = viper.GetBool("autoload")
	cfg.Watch = viper.GetBool("watch")
	cfg.Clipboard = viper.GetBool("clipboard")
	cfg.ShowAllFiles = showAll
	cfg.UpgradePackages = viper.GetStringSlice("remediation.packages")
	if wd, err := os.Getwd(); err == nil {
		cfg.Workdir = wd
	}

	store, err := prefs.NewStore(prefsFile)
	if err != nil {
		return err
	}

	dispatcher := pipeline.NewDispatcher(
		pipeline.NewBridge(python),
		pipeline.NewPipRemediator(python, cfg.UpgradePackages, viper.GetDuration("remediation.timeout")),
	)
	dispatcher.Timeout = viper.GetDuration("timeout")

	log.Debug("Starting ttscli", "python", python, "prefs", store.Path(), "autoload", cfg.Autoload)

	app := ui.NewApp(cfg, session.New(), store, dispatcher, os.Stdin, os.Stdout)
	if cfg.Watch {
		w, err := store.Watch()
		if err != nil {
			log.Warn("Unable to watch saved settings", "error", err)
		} else {
			defer w.Close() //nolint:errcheck
			app.SetWatcher(w)
		}
	}

	return app.Run(cmd.Context())
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	loadDotEnv()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&python, "python", "", "python interpreter that can import tts_lib")
	rootCmd.PersistentFlags().StringVar(&prefsFile, "prefs", "", "saved settings file (default ~/"+prefs.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().BoolVarP(&showAll, "all", "a", false, "show files ignored by git in the file picker")
	rootCmd.Flags().Bool("no-autoload", false, "start with defaults instead of saved settings")
	rootCmd.Flags().Bool("clipboard", false, "copy the output path to the clipboard after a conversion")
	rootCmd.Flags().Duration("timeout", 0, "give up on a conversion after this long (0 disables)")

	// Config bindings
	_ = viper.BindPFlag("python", rootCmd.PersistentFlags().Lookup("python"))
	_ = viper.BindPFlag("prefs", rootCmd.PersistentFlags().Lookup("prefs"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))
	_ = viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	_ = viper.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))

	viper.SetDefault("python", pipeline.DefaultPython)
	viper.SetDefault("autoload", true)
	viper.SetDefault("watch", true)
	viper.SetDefault("all", false)
	viper.SetDefault("timeout", 0)
	viper.SetDefault("remediation.packages", pipeline.DefaultUpgradePackages)
	viper.SetDefault("remediation.timeout", "15m")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.max_size", 10)
	viper.SetDefault("log.max_backups", 3)

	rootCmd.AddCommand(configCmd, doctorCmd, guideCmd, manCmd)
}

func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not load .env file", "error", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "ttscli")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "ttscli")}, dirs...)
	}

	if c := os.Getenv("TTSCLI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("ttscli")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("ttscli")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "ttscli.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
