package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cleitonmarx/vanguard"
	"github.com/cleitonmarx/vanguard/config"
	"github.com/cleitonmarx/vanguard/probe"
	"github.com/cleitonmarx/vanguard/step"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vanguard [flags] -- command [args...]",
		Short: "Vanguard: container entrypoint that waits for dependencies, then execs your service",
		Long: "Vanguard runs ordered init steps, polls dependency readiness with a bounded " +
			"wait budget, then replaces itself with the target process so the service " +
			"keeps PID 1 and the signal handling a container runtime expects.",
		Args:          cobra.MinimumNArgs(1),
		RunE:          runStartup,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Int("max-attempts", 0, "Override READY_MAX_ATTEMPTS (default 30)")
	cmd.Flags().Int("interval", 0, "Override READY_INTERVAL_SECONDS (default 1)")
	cmd.Flags().StringSlice("wait", nil, "Hosts that must resolve before handoff")
	cmd.Flags().StringSlice("wait-tcp", nil, "host:port addresses that must accept connections")
	cmd.Flags().StringSlice("wait-http", nil, "URLs that must answer with status < 400")
	cmd.Flags().StringSlice("wait-postgres", nil, "Postgres DSNs that must accept a ping")
	cmd.Flags().String("init-cmd", "", "Shell command to run once before polling (e.g. a migration)")
	cmd.PersistentFlags().StringP("log", "l", "", "Set log level. Available: debug, info, warn, error")

	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		levelStr, _ := c.Flags().GetString("log")
		if levelStr == "" {
			levelStr = config.GetWithDefault(c.Context(), "VANGUARD_LOG_LEVEL", "info")
		}
		switch levelStr {
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vanguard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("vanguard", version)
		},
	}
}

func runStartup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		// Interrupt signal sent from terminal
		os.Interrupt,
		// Termination signal sent from Kubernetes or other orchestrators
		syscall.SIGTERM,
	)
	defer stop()

	// Environment always wins; an optional YAML file sits underneath.
	if path := os.Getenv("VANGUARD_CONFIG"); path != "" {
		config.SetGlobalProvider(config.NewCompositeProvider(
			config.NewEnvVarProvider(),
			config.NewYAMLFileProvider(path),
		))
	}

	var settings vanguard.Settings
	if err := config.LoadStruct(ctx, &settings); err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-attempts"); v > 0 {
		settings.MaxAttempts = v
	}
	if v, _ := cmd.Flags().GetInt("interval"); v > 0 {
		settings.IntervalSeconds = v
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Str("launch_id", uuid.NewString()).
		Logger()

	orchestrator := vanguard.New(settings.PollConfig()).
		WithLogger(logger).
		Exec(args[0], args[1:]...)

	if initCmd, _ := cmd.Flags().GetString("init-cmd"); initCmd != "" {
		orchestrator.Init(step.Command{Name: "sh", Args: []string{"-c", initCmd}})
	}
	hosts, _ := cmd.Flags().GetStringSlice("wait")
	for _, host := range hosts {
		orchestrator.Await(probe.DNS{Host: host})
	}
	addrs, _ := cmd.Flags().GetStringSlice("wait-tcp")
	for _, addr := range addrs {
		orchestrator.Await(probe.TCP{Addr: addr})
	}
	urls, _ := cmd.Flags().GetStringSlice("wait-http")
	for _, url := range urls {
		orchestrator.Await(probe.HTTP{URL: url})
	}
	dsns, _ := cmd.Flags().GetStringSlice("wait-postgres")
	for _, dsn := range dsns {
		orchestrator.Await(probe.Postgres{DSN: dsn})
	}

	// Does not return on success: the target replaces this process.
	orchestrator.RunOrExit(ctx)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("vanguard failed")
		os.Exit(vanguard.ExitCode(err))
	}
}
