package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/orbital/internal/api"
	"github.com/samcharles93/orbital/internal/device"
	"github.com/samcharles93/orbital/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve orbital contexts over a REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			applyServeConfig(cmd, cfg, &addr)
			log := logger.FromContext(ctx)

			if _, err := device.Normalize(deviceName); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			store := api.NewSessionStore(api.StoreConfig{
				Device:  deviceName,
				Workers: int(workers),
				Logger:  log,
			})
			defer func() {
				if err := store.Close(); err != nil {
					log.Warn("closing contexts", "error", err)
				}
			}()
			server := api.NewServer(store, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "device", deviceName)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
