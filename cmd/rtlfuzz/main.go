// rtlfuzz - coverage-guided fuzzing core for RTL hardware designs
// A Go port of the rfuzz/DifuzzRTL-style mutation-based fuzzing loop.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flaviensolt/rtlfuzz/internal/config"
	"github.com/flaviensolt/rtlfuzz/internal/dashboard"
	"github.com/flaviensolt/rtlfuzz/internal/driver"
	"github.com/flaviensolt/rtlfuzz/internal/memory"
	"github.com/flaviensolt/rtlfuzz/internal/persist"
	"github.com/flaviensolt/rtlfuzz/internal/report"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
	"github.com/flaviensolt/rtlfuzz/internal/simulator"
	"github.com/flaviensolt/rtlfuzz/internal/ui"
)

var (
	version = "0.1.0-dev"

	configFile string
	corpusDir  string
	crashDir   string
	traceFile  string
	maxExecs   int
	timeoutSec int
	tuiMode    bool
	webMode    bool
	webAddr    string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rtlfuzz",
		Short: "rtlfuzz - coverage-guided fuzzing core for RTL hardware designs",
		Long: `rtlfuzz drives a coverage-guided, mutation-based fuzzing loop against
an RTL design under test through a simulator adapter.

Features:
  - Deterministic + random mutator family, ported from the rfuzz/DifuzzRTL core
  - Sticky-OR coverage accumulation with an interestingness test
  - Optional live TUI and web dashboard`,
		RunE: runFuzz,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to config file (YAML)")
	rootCmd.Flags().StringVar(&corpusDir, "corpus-dir", "", "override corpus output directory")
	rootCmd.Flags().StringVar(&crashDir, "crash-dir", "", "override crash output directory")
	rootCmd.Flags().StringVar(&traceFile, "trace-file", "", "trace file path consumed by the simulator build around the core")
	rootCmd.Flags().IntVar(&maxExecs, "max-execs", 0, "stop after this many mutation trials (0 = unbounded)")
	rootCmd.Flags().IntVar(&timeoutSec, "timeout", 0, "stop after this many seconds (0 = unbounded)")
	rootCmd.Flags().BoolVar(&tuiMode, "tui", false, "render a live Bubble Tea progress view")
	rootCmd.Flags().BoolVar(&webMode, "web", false, "start the read-only live web dashboard")
	rootCmd.Flags().StringVar(&webAddr, "web-addr", "", "dashboard listen address (default from config, e.g. :8787)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose slog output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rtlfuzz version %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.FuzzConfig, error) {
	var cfg *config.FuzzConfig
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if corpusDir != "" {
		cfg.CorpusDir = corpusDir
	}
	if crashDir != "" {
		cfg.CrashDir = crashDir
	}
	if traceFile != "" {
		cfg.TraceFile = traceFile
	}
	if maxExecs > 0 {
		cfg.MaxExecs = maxExecs
	}
	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if tuiMode {
		cfg.EnableTUI = true
	}
	if webMode {
		cfg.EnableWeb = true
	}
	if webAddr != "" {
		cfg.WebAddr = webAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFuzz(cmd *cobra.Command, args []string) error {
	log := newLogger(verbose)

	cfg, err := loadConfig()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if _, err := config.LoadSimTargets(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sim := simulator.NewReferenceAdapter(
		rtlbits.NewWidth(cfg.NFuzzInputs),
		rtlbits.NewWidth(cfg.NCovPoints),
		rtlbits.NewWidth(cfg.NAsserts),
		cfg.NResetTicks,
		cfg.NMetaResetTicks,
	)

	d := driver.New(cfg, sim, log)

	writer, err := persist.NewWriter(4, log)
	if err != nil {
		log.Error("failed to start persistence pool", "error", err)
		os.Exit(1)
	}
	d.WithPersistence(writer)
	if cfg.WriteCov {
		d.WithCoverageDump(persist.NewCoverageDumper(cfg.CovDumpDir))
	}

	var dash *ui.Dashboard
	var program *tea.Program
	if cfg.EnableTUI {
		dash = ui.NewDashboard()
		program = ui.RunWithProgram(dash)
		go func() {
			if _, err := program.Run(); err != nil {
				log.Error("tui exited with error", "error", err)
			}
		}()
		dash.Start()
		d.WithStatsSink(dash.GetStats())
	}

	memMonitor := memory.NewMonitor(30*time.Second, memory.DefaultThreshold())
	memMonitor.Start()
	go func() {
		for alert := range memMonitor.GetAlerts() {
			log.Warn("memory alert", "type", alert.Type, "message", alert.Message, "value", alert.Value, "threshold", alert.Threshold)
		}
	}()

	var dashServer *dashboard.Server
	if cfg.EnableWeb {
		dashServer = dashboard.NewServer(log)
		go func() {
			if err := dashServer.Start(cfg.WebAddr); err != nil {
				log.Error("dashboard server stopped", "error", err)
			}
		}()
		d.WithDashboard(dashServer)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	var stats driver.Stats
	var runErr error
	go func() {
		stats, runErr = d.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-sigChan:
		log.Info("signal received, waiting for the fuzzing run to finish")
		<-done
	}

	writer.Close()
	memMonitor.Stop()

	if dash != nil {
		dash.Complete()
		program.Quit()
	}
	if dashServer != nil {
		dashServer.Stop()
	}

	if runErr != nil {
		log.Error("fuzzing run failed", "error", runErr)
		os.Exit(1)
	}

	rep := report.FromStats(stats)
	path, err := report.Write(cfg.CorpusDir, rep, &report.JSONGenerator{Indent: true})
	if err != nil {
		log.Error("failed to write report", "error", err)
		os.Exit(1)
	}
	log.Info("fuzzing run complete", "report", path,
		"achieved_coverage", stats.AchievedCoverage, "max_coverage", stats.MaxCoverage)
	return nil
}
