package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loomkit/loom/internal/config"
	"github.com/loomkit/loom/internal/serve"
	"github.com/loomkit/loom/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Preview templates over HTTP with live reload",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		mgr, err := buildManager(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watcher, err := watch.New(cfg.Templates.Root, mgr, log)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)

		server := serve.New(mgr, watcher.Subscribe(), log)
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return server.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "server port")
	serveCmd.Flags().String("host", "localhost", "server host")
	bindFlag("server.port", serveCmd.Flags(), "port")
	bindFlag("server.host", serveCmd.Flags(), "host")
	rootCmd.AddCommand(serveCmd)
}
