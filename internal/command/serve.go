package command

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zhanghaidi/nako-blog/internal/app"
	"github.com/zhanghaidi/nako-blog/internal/server"
	"github.com/zhanghaidi/nako-blog/internal/session"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the blog and admin panel web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				return errors.Join(errors.New("redis session backend unreachable"), err)
			}
			defer func() {
				if err := client.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			sessions := session.NewRedisStore(client, cfg.SessionTTL, cfg.AuthKeyTTL)

			grp, ctx := errgroup.WithContext(cmd.Context())

			listener, err := server.Listen(ctx, cfg.WebAddress)
			if err != nil {
				return err
			}

			srv := app.New(cfg, logger, store, sessions)

			logger.InfoContext(ctx,
				"starting app server...",
				slog.String("address", cfg.WebAddress),
			)
			server.Serve(ctx, grp, srv.Server, listener, server.ShutdownTimeout)
			return grp.Wait()
		},
	}
}
