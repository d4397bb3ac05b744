package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Proton-105/relay-bot/pkg/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relay-bot",
		Short:        "Telegram bot relaying private messages into per-user topics of a staff chat",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default ./configs/<APP_ENV>.yaml).")

	serve := newServeCmd()
	cmd.AddCommand(serve)
	cmd.AddCommand(newConfigCmd())

	// Running the binary without a subcommand serves.
	cmd.RunE = serve.RunE

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, path)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			cfg, _, err := config.Load(path)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"config OK: env=%s mode=%s redis=%s root=%s cache=%t serialize_topics=%t\n",
				cfg.AppEnv, cfg.Bot.Mode, cfg.Redis.Addr, cfg.Store.Root, cfg.Store.Cache, cfg.Contact.SerializeTopics,
			)
			return err
		},
	})

	return cmd
}
