package main

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vkngwrapper/arsenal/batchalloc/batch"
	"github.com/vkngwrapper/arsenal/batchalloc/metrics"
	"golang.org/x/exp/slog"
)

const (
	flagLogLevel            = "log-level"
	flagScenario            = "scenario"
	flagJSON                = "json"
	flagMetrics             = "metrics"
	flagBufferDeviceAddress = "buffer-device-address"
)

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, errors.Newf("unknown log level %q", level)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	logLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.HandlerOptions{Level: logLevel}.NewTextHandler(w)), nil
}

func newRootCmd() *cobra.Command {
	config := viper.New()
	config.SetEnvPrefix("BATCHPLAN")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "batchplan",
		Short:         "Plan batch device memory allocations against a simulated device",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(flagLogLevel, "warn", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newPlanCmd(config))

	return rootCmd
}

func newPlanCmd(config *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Allocate every resource in a scenario file and print where it was placed",
		Long: `Allocate every resource in a scenario file and print where it was placed.

The scenario file may be YAML, JSON or TOML. It lists the device's memory heaps and memory types
and the buffers and images to allocate. Flags may also be set through BATCHPLAN_ environment
variables, e.g. BATCHPLAN_LOG_LEVEL=debug.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(config, cmd.Flags(), cmd.InheritedFlags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, config)
		},
	}

	cmd.Flags().String(flagScenario, "", "path to the scenario file")
	cmd.Flags().Bool(flagJSON, false, "print the plan as JSON instead of tables")
	cmd.Flags().Bool(flagMetrics, false, "print allocation counters in the prometheus text format")
	cmd.Flags().Bool(flagBufferDeviceAddress, false, "allocate buffer memory with the device address flag")

	return cmd
}

func bindFlags(config *viper.Viper, flagSets ...*pflag.FlagSet) error {
	for _, flags := range flagSets {
		err := config.BindPFlags(flags)
		if err != nil {
			return err
		}
	}

	return nil
}

func runPlan(cmd *cobra.Command, config *viper.Viper) error {
	logger, err := newLogger(cmd.ErrOrStderr(), config.GetString(flagLogLevel))
	if err != nil {
		return err
	}

	scenarioPath := config.GetString(flagScenario)
	if scenarioPath == "" {
		return errors.New("--scenario is required")
	}

	scenario, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	built, err := scenario.build()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return err
	}

	var flags batch.CreateFlags
	if scenario.BufferDeviceAddress || config.GetBool(flagBufferDeviceAddress) {
		flags |= batch.CreateBufferDeviceAddress
	}

	allocator, err := batch.New(logger, built.device, built.device.MemoryTypes(), batch.CreateOptions{
		Flags:           flags,
		MemoryCallbacks: collector,
	})
	if err != nil {
		return err
	}

	plan, res, err := allocator.AllocateBatch(built.buffers, built.images)
	if err != nil {
		return errors.Wrapf(err, "allocating batch (%s, %s)", batch.KindOf(err), res)
	}

	out := cmd.OutOrStdout()
	if config.GetBool(flagJSON) {
		_, err = io.WriteString(out, plan.BuildStatsString()+"\n")
		if err != nil {
			return err
		}
	} else {
		writeResourceTable(out, built)
		writeBlockTable(out, plan, built.device.MemoryTypes())
	}

	if config.GetBool(flagMetrics) {
		return writeMetrics(out, registry)
	}

	return nil
}
