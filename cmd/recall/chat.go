package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/recall/internal/transport/cli"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively with memory-backed context",
	Long:  `Opens a local REPL. Every turn is recorded, answered with assembled context and summarized when thresholds fire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)

		repl, err := cli.NewReadLine(app.Pipeline, app.Config)
		if err != nil {
			return err
		}

		// Background services run alongside; the REPL owns the foreground.
		srv.StartServices(ctx, app.Services)

		if err := repl.Start(ctx); err != nil && err != ctx.Err() {
			log.FromCtx(ctx).Error().Err(err).Msg("chat loop failed")
		}
		if err := repl.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to close readline")
		}

		stop()
		srv.ShutdownServices(ctx, app.Services)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
