package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/projecthub/internal/auth"
	"github.com/example/projecthub/internal/config"
	"github.com/example/projecthub/internal/httpserver"
	"github.com/example/projecthub/internal/logutil"
	"github.com/example/projecthub/internal/projects"
	"github.com/example/projecthub/internal/session"
	"github.com/example/projecthub/internal/store"
	"github.com/example/projecthub/internal/web"
	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			log := logutil.NewLogger(cfg.DevMode)
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = logutil.WithLogger(ctx, log)

			users, err := store.Open(ctx, store.NewFilePersister(cfg.UserdataFile))
			if err != nil {
				return err
			}
			repo, err := projects.OpenRepo(cfg.ProjectsFile)
			if err != nil {
				return err
			}
			sessions, err := session.NewManager(cfg.CookieHashKey, cfg.CookieBlockKey, users, cfg.SessionTTL)
			if err != nil {
				return err
			}

			srv, err := web.NewServer(auth.Service{Users: users}, sessions, repo, log)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx, cfg.ListenAddr, srv.Routes())
		},
	}
}
