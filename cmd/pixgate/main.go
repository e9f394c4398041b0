// Command pixgate runs the image gateway: one HTTP route that resolves
// a source file, negotiates an output format, and serves a cached or
// freshly rendered derivative.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"pixgate/buster"
	"pixgate/cache"
	"pixgate/config"
	"pixgate/converter"
	"pixgate/formats"
	"pixgate/handlers"
	"pixgate/imaging"
	"pixgate/logging"
	"pixgate/pipeline"
	"pixgate/server"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		dumpPath   string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the image gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dumpPath != "" {
				if err := cfg.DumpYAML(dumpPath); err != nil {
					return fmt.Errorf("dump config: %w", err)
				}
				fmt.Printf("Settings dumped to: %s\n", dumpPath)
			}
			return run(cfg)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration, layered beneath environment variables")
	serveCmd.Flags().StringVar(&dumpPath, "dump", "", "Write the resolved configuration to this path and continue")

	rootCmd := &cobra.Command{
		Use:   "pixgate",
		Short: "On-demand image derivative gateway",
	}
	rootCmd.AddCommand(serveCmd)
	return rootCmd
}

func run(cfg *config.Config) error {
	log := logging.NewLogger(os.Stdout, cfg.LogLevel())
	log.InfoWithFields("starting pixgate", "config", cfg.String())

	if cfg.Workers > 0 {
		prev := runtime.GOMAXPROCS(cfg.Workers)
		log.InfoWithFields("set GOMAXPROCS", "value", cfg.Workers, "previous", prev)
	}
	if cfg.VipsConcurrency > 0 {
		imaging.SetConcurrency(cfg.VipsConcurrency)
	}
	imaging.Initialize()
	defer imaging.Shutdown()

	if err := os.MkdirAll(cfg.Cache, 0o755); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}
	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}

	convCfg := converter.DefaultConfig()
	convCfg.MpvPath = cfg.Mpv
	convCfg.CacheRoot = cfg.Cache

	orchestrator := pipeline.NewOrchestrator(convCfg, store, cfg.SVGDPI, log)

	negotiator := formats.Negotiator{AvifEnable: cfg.AvifEnable}
	policy := formats.Policy{AvifEnable: cfg.AvifEnable, VideoEnable: true}

	imageHandler := handlers.NewImageHandler(store, orchestrator, negotiator, policy, cfg.Key, cfg.CacheEnable, log)

	busterCfg := buster.DefaultConfig(cfg.Cache)
	busterCfg.CapacityGB = int64(cfg.CacheCapacityGB)
	scheduler, err := buster.NewDailyScheduler(busterCfg, log)
	if err != nil {
		return fmt.Errorf("create eviction scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srvCfg := &server.Config{
		Port:            cfg.Port,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		EnableCORS:      true,
		CORSOrigins:     cfg.CORSOrigins(),
		Production:      true,
	}

	srv := server.New(srvCfg, imageHandler, log)
	srv.AddHealthCheck("cache_writable", func() bool {
		return cacheWritable(cfg.Cache)
	})

	return srv.Run()
}

func cacheWritable(root string) bool {
	probe := filepath.Join(root, ".pixgate-health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
