package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/tuskrelay/internal/transport/cli"
	"github.com/sandevgo/tuskrelay/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the configured assistant in the terminal",
	Long:  `Runs the same prompt, provider and session store as 'relay serve', without the HTTP server or widget checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		chatSvc, appCfg, services := newChat(ctx)
		srv.StartServices(ctx, services)

		rl, err := cli.NewReadLine(chatSvc, appCfg.GetRuntimePath())
		if err == nil {
			services = append(services, rl)
			err = rl.Start(ctx)
		}

		// Leaving the prompt stops the background services too
		stop()
		srv.ShutdownServices(ctx, services)
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
