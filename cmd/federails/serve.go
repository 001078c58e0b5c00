// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klppl/federails/internal/config"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/federation/inbound"
	"github.com/klppl/federails/internal/federation/inbox"
	"github.com/klppl/federails/internal/federation/outbox"
	"github.com/klppl/federails/internal/federation/resolve"
	"github.com/klppl/federails/internal/httpclient"
	"github.com/klppl/federails/internal/log"
	"github.com/klppl/federails/internal/ratelimit"
	"github.com/klppl/federails/internal/scheduler"
	"github.com/klppl/federails/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the federation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := bundb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer db.Close()

	st := store.Open(db)

	client := httpclient.New(httpclient.Config{})
	fetcher := dereference.New(client, st, cfg.Hostname)
	parser := inbound.New(st, fetcher, cfg.Hostname)
	resolver := resolve.New(st)
	ob := outbox.New(st, client, cfg.Hostname, cfg.Federation.WorkerCount)
	limiter := ratelimit.New(5, 20)

	if cfg.Federation.Enabled {
		if err := ob.Start(); err != nil {
			return fmt.Errorf("serve: starting outbound queue: %w", err)
		}
		defer ob.Stop()
	}

	sched := scheduler.New(st, fetcher, cfg.Hostname)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("serve: starting scheduler: %w", err)
	}
	defer sched.Stop()

	if cfg.LogLevel != "" {
		log.SetLevel(log.ParseLevel(cfg.LogLevel))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	dispatcher := inbox.New(st, fetcher, parser, resolver, ob, limiter, cfg.Hostname)
	dispatcher.Register(r)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("serve: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
