package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/forgemods/internal/config"
	"github.com/tanq16/forgemods/internal/output"
	"github.com/tanq16/forgemods/internal/scheduler"
	"github.com/tanq16/forgemods/internal/status"
	"github.com/tanq16/forgemods/internal/utils"
)

const programName = "Minecraft Mod Downloader"

var (
	configPath    string
	outputDir     string
	workers       int
	gameVersion   string
	timeout       time.Duration
	apiTimeout    time.Duration
	stallTimeout  time.Duration
	userAgent     string
	proxyURL      string
	headers       []string
	curseForgeKey string
	plainOutput   bool
	debug         bool

	logCloser io.Closer
)

var ForgemodsVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "forgemods [MANIFEST]",
	Short:   "Download the Forge mods listed in a manifest from Modrinth, falling back to CurseForge",
	Version: ForgemodsVersion,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := utils.InitLogger(debug, utils.LogFile)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			output.PrintError(err.Error())
			exitRun(1)
		}
		manifestPath := ""
		if len(args) > 0 {
			manifestPath = args[0]
		} else {
			manifestPath, err = selectManifest(".", os.Stdin)
			if err != nil {
				output.PrintError(err.Error())
				exitRun(1)
			}
			if manifestPath == "" {
				return
			}
		}
		failed, err := runDownloads(cfg, manifestPath)
		if err != nil {
			output.PrintError(err.Error())
			exitRun(1)
		}
		if failed {
			exitRun(1)
		}
	},
}

func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// exitRun closes the debug log first; os.Exit skips PersistentPostRun.
func exitRun(code int) {
	closeLog()
	os.Exit(code)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitRun(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default forgemods.toml if present)")
	rootCmd.PersistentFlags().StringVarP(&gameVersion, "game-version", "g", "", "Minecraft version (inferred from manifest file names if not provided)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", utils.DefaultClientTimeout, "Overall ceiling per HTTP request (eg. 30s, 5m)")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "api-timeout", utils.DefaultAPITimeout, "Timeout for each provider API call")
	rootCmd.PersistentFlags().DurationVar(&stallTimeout, "stall-timeout", utils.DefaultStallTimeout, "Abort a download after this long without data")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers for every provider request; can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&curseForgeKey, "curseforge-key", "", "CurseForge API key (or set CURSEFORGE_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write a debug log to "+utils.LogFile)

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", utils.DefaultDownloadDir, "Download directory")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", utils.DefaultWorkers, "Number of mods to download in parallel")
	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print one line per finished mod instead of the live display")

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newCleanCmd())
}

// loadConfig layers changed flags on top of the config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, exists, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if exists {
		log.Debug().Str("op", "cmd/config").Msg("Loaded config file")
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Download.Dir = outputDir
	}
	if flags.Changed("workers") {
		cfg.Download.Workers = workers
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = config.Duration{Duration: timeout}
	}
	if flags.Changed("api-timeout") {
		cfg.HTTP.APITimeout = config.Duration{Duration: apiTimeout}
	}
	if flags.Changed("stall-timeout") {
		cfg.HTTP.StallTimeout = config.Duration{Duration: stallTimeout}
	}
	if flags.Changed("user-agent") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("proxy") {
		cfg.HTTP.Proxy = proxyURL
	}
	if flags.Changed("curseforge-key") {
		cfg.CurseForge.APIKey = curseForgeKey
	}
	if cfg.HTTP.Headers == nil {
		cfg.HTTP.Headers = map[string]string{}
	}
	for k, v := range utils.ParseHeaderArgs(headers) {
		cfg.HTTP.Headers[k] = v
	}
	return cfg, cfg.Validate()
}

// runDownloads reports whether any job failed. Errors are process-level:
// nothing has been downloaded when one is returned.
func runDownloads(cfg config.Config, manifestPath string) (bool, error) {
	manifest, err := utils.LoadManifest(manifestPath)
	if err != nil {
		return false, err
	}
	for _, dup := range manifest.Duplicates {
		output.PrintWarning(fmt.Sprintf("Duplicate entry for %s (%s) ignored", dup.Filename, dup.Name))
	}

	version := gameVersion
	if version == "" {
		var inferred bool
		version, inferred = utils.InferGameVersion(manifest.Mods, cfg.Download.DefaultGameVersion)
		if !inferred {
			output.PrintWarning(fmt.Sprintf("Could not infer the game version from file names, using default %s", version))
		}
	}
	output.PrintSuccess(fmt.Sprintf("Loaded %d mods from %s, game version %s", len(manifest.Mods), filepath.Base(manifestPath), version))

	dir := cfg.Download.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("error creating download directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, utils.LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("error locking %s: %w", dir, err)
	}
	if !locked {
		return false, fmt.Errorf("another forgemods run is using %s", dir)
	}
	defer lock.Unlock()

	jobs := make([]*status.Job, len(manifest.Mods))
	for i, mod := range manifest.Mods {
		jobs[i] = status.NewJob(mod, dir)
	}
	store := status.NewStore(jobs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := !plainOutput && output.IsTerminal()
	mgr := output.NewManager(store, fmt.Sprintf("%s %s MC %s", programName, output.StyleSymbols["dot"], version), live)
	mgr.StartDisplay()
	runErr := scheduler.Run(ctx, store, buildProviders(cfg), scheduler.Options{
		Workers:     cfg.Download.Workers,
		GameVersion: version,
	})
	mgr.StopDisplay()
	mgr.ShowSummary()

	if errors.Is(runErr, context.Canceled) {
		return true, nil
	}
	return store.Counters().Failed > 0, nil
}
