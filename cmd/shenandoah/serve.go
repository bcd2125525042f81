// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thediveo/shenandoah"
	"github.com/thediveo/shenandoah/config"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		root       string
		configFile string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the specs of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, root, configFile)
			if err != nil {
				return err
			}
			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			srv, err := newServer(cfg, log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listenAndServe(ctx, cfg.Addr, srv, log)
		},
	}
	flags := cmd.Flags()
	flags.String("addr", config.DefaultAddr, "address to listen on")
	flags.String("project", "", "project name shown in the spec index")
	flags.String("main-path", "", "directory of the JavaScript sources")
	flags.String("spec-path", "", "directory of the JavaScript specs")
	flags.String("spec-glob", shenandoah.DefaultSpecGlob, "pattern of the spec files in the spec directory")
	flags.String("env", "", "environment overriding the main and spec directories")
	flags.StringVar(&root, "root", ".", "project root directory")
	flags.StringVarP(&configFile, "config", "c", "", "configuration file (default shenandoah.yaml in the project root)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log each request")
	return cmd
}

// loadConfig loads the project configuration and then applies the flags
// explicitly set on the command line.
func loadConfig(cmd *cobra.Command, root, configFile string) (*config.Config, error) {
	cfg, err := config.Load(root, configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	for _, f := range []struct {
		name  string
		field *string
	}{
		{"addr", &cfg.Addr},
		{"project", &cfg.ProjectName},
		{"main-path", &cfg.MainPath},
		{"spec-path", &cfg.SpecPath},
		{"spec-glob", &cfg.SpecGlob},
		{"env", &cfg.Environment},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.field, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	logcfg := zap.NewProductionConfig()
	if verbose {
		logcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return logcfg.Build()
}

func newServer(cfg *config.Config, log *zap.Logger) (*shenandoah.Server, error) {
	locator, err := cfg.Locator()
	if err != nil {
		return nil, err
	}
	log.Info("serving specs",
		zap.String("main", locator.MainPath),
		zap.String("spec", locator.SpecPath),
		zap.String("environment", cfg.Environment))
	return shenandoah.NewServer(
		shenandoah.WithLocator(locator),
		shenandoah.WithProjectName(cfg.ProjectName),
		shenandoah.WithSpecGlob(cfg.SpecGlob),
		shenandoah.WithLogger(log),
	), nil
}

// listenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully.
func listenAndServe(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan error, 1)
	go func() {
		done <- httpServer.Serve(l)
	}()
	log.Info("listening", zap.String("addr", "http://"+l.Addr().String()+"/"))

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
