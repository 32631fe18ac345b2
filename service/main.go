package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/shirou/gopsutil/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"system_exporter/internal/config"
	"system_exporter/logmanager"
)

type flagOverrides struct {
	configPath    string
	namespace     string
	procDir       string
	listenAddress string
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	cmd := &cobra.Command{
		Use:           "system_exporter",
		Short:         "Expose CPU and memory statistics from procfs to Prometheus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", config.DefaultPath(), "path to the YAML config file")
	cmd.Flags().StringVar(&flags.namespace, "namespace", "", "metric name namespace")
	cmd.Flags().StringVar(&flags.procDir, "proc-dir", "", "procfs mount point")
	cmd.Flags().StringVar(&flags.listenAddress, "listen-address", "", "address to serve metrics on")

	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, flags flagOverrides) (*config.Config, error) {
	cfg, err := config.Read(flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg = withOverrides(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, flags flagOverrides) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logMgr, err := logmanager.New(logmanager.Options{Level: cfg.Log.Level, FilePath: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logMgr.Close()
	logger := logMgr.Logger()

	if info, err := host.Info(); err != nil {
		logger.Warn("failed to read host info", zap.Error(err))
	} else {
		logger.Info("starting system_exporter",
			zap.String("hostname", info.Hostname),
			zap.String("platform", info.Platform),
			zap.String("kernel", info.KernelVersion))
	}

	exp := newExporter(logger)
	if err := exp.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer cancel()

	reload := func(next *config.Config) {
		if next.ListenAddress != cfg.ListenAddress || next.MetricsPath != cfg.MetricsPath || next.HandshakeKey != cfg.HandshakeKey {
			logger.Warn("listen_address, metrics_path and handshake_key changes need a restart")
		}
		if err := exp.apply(withOverrides(cmd, flags, next)); err != nil {
			logger.Error("failed to apply reloaded config", zap.Error(err))
		}
	}

	if err := config.Watch(ctx, flags.configPath, logger, reload); err != nil {
		logger.Warn("config file watch disabled", zap.String("path", flags.configPath), zap.Error(err))
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, unix.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				next, err := config.Read(flags.configPath)
				if err != nil {
					logger.Error("failed to reload config", zap.Error(err))
					continue
				}
				reload(next)
			}
		}
	}()

	if err := startHTTPServer(ctx, cfg, exp); err != nil {
		return err
	}
	logger.Info("service stopped")
	return nil
}

// withOverrides reapplies command line flags to a reloaded config.
func withOverrides(cmd *cobra.Command, flags flagOverrides, cfg *config.Config) *config.Config {
	if cmd.Flags().Changed("namespace") {
		cfg.Namespace = flags.namespace
	}
	if cmd.Flags().Changed("proc-dir") {
		cfg.ProcDir = flags.procDir
	}
	if cmd.Flags().Changed("listen-address") {
		cfg.ListenAddress = flags.listenAddress
	}
	return cfg
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
