// Command beamd is the Beam daemon: it loads configuration, stands up a
// scheduler, a TCP request/response service listener, an HTTP servlet
// container, and a Prometheus metrics endpoint, then runs until a signal
// asks it to stop.
//
// Grounded on cmd/authn/main.go (flag parsing, config load-or-exit,
// SIGINT/SIGTERM-driven graceful shutdown, nlog setup before the first
// log line) generalized from AuthN's single-purpose server to Beam's
// three-listener composition.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beamtrade/beam/cmn/config"
	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/network/tcp"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/services"
	"github.com/beamtrade/beam/services/wire"
	"github.com/beamtrade/beam/sessionstore"
	"github.com/beamtrade/beam/stats"
	"github.com/beamtrade/beam/webservletcontainer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configPath  string
	listenAddr  string
	httpAddr    string
	metricsAddr string
	staticDir   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "beamd configuration file (YAML)")
	flag.StringVar(&listenAddr, "listen", ":7100", "service protocol listen address")
	flag.StringVar(&httpAddr, "http", ":7101", "web servlet container listen address")
	flag.StringVar(&metricsAddr, "metrics", ":7102", "Prometheus metrics listen address")
	flag.StringVar(&staticDir, "static", "", "directory served by the web servlet container's fallback FileStore")
}

func main() {
	if len(os.Args) == 2 && os.Args[1] == "version" {
		printVersion()
		return
	}
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		nlog.Errorf("beamd: failed to load configuration: %v", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics := stats.NewRegistry(reg)

	sched := routines.New(cfg.WorkerCount)
	sched.SetMetrics(metrics)
	ctx, cancel := context.WithCancel(routines.ExternalContext(context.Background()))
	defer cancel()

	serviceListener, err := startServiceListener(ctx, sched, listenAddr)
	if err != nil {
		nlog.Errorf("beamd: %v", err)
		os.Exit(1)
	}

	_, httpListener, err := startWebServletContainer(ctx, sched, metrics, httpAddr, staticDir)
	if err != nil {
		nlog.Errorf("beamd: %v", err)
		os.Exit(1)
	}

	metricsSrv := startMetricsServer(reg, metricsAddr)

	nlog.Infof("beamd: serving requests on %s, http on %s, metrics on %s", listenAddr, httpAddr, metricsAddr)

	waitForShutdownSignal()

	nlog.Infoln("beamd: shutting down")
	cancel()
	serviceListener.Close()
	httpListener.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	sched.Shutdown()
	nlog.Flush(true)
}

// startServiceListener accepts request/response service connections and
// spawns one services.Protocol reader routine per Channel, mirroring
// webservletcontainer.Container's accept-loop shape but for the raw
// frame protocol instead of HTTP.
func startServiceListener(ctx context.Context, sched *routines.Scheduler, addr string) (*tcp.Listener, error) {
	ln, err := tcp.Listen(addr)
	if err != nil {
		return nil, cos.Wrapf(err, "listen service protocol on %s", addr)
	}
	slots := services.NewSlotRegistry()
	slots.RegisterRequestSlot("Ping", func(token *services.RequestToken, _ []byte) {
		_ = token.SetResult(ctx, map[string]string{"status": "ok"})
	})
	sched.Spawn(ctx, func(ctx context.Context) {
		for {
			ch, err := ln.Accept()
			if err != nil {
				return
			}
			proto := services.NewProtocol(sched, ch, wire.JSONCodec{}, slots)
			proto.Serve(ctx)
		}
	}, 0, -1)
	return ln, nil
}

type daemonSession struct{}

// startWebServletContainer wires a session-aware HTTP front door: an
// optional FileStore fallback for static assets, reachable once the
// caller registers slots of its own via Container.Handle.
func startWebServletContainer(ctx context.Context, sched *routines.Scheduler, metrics *stats.Registry, addr, dir string) (*webservletcontainer.Container[daemonSession], *tcp.Listener, error) {
	ln, err := tcp.Listen(addr)
	if err != nil {
		return nil, nil, cos.Wrapf(err, "listen http on %s", addr)
	}
	store := sessionstore.NewMemoryStore(func() daemonSession { return daemonSession{} })
	c := webservletcontainer.New[daemonSession](sched, ln, store)
	c.SetMetrics(metrics)
	if dir != "" {
		fs := webservletcontainer.NewFileStore(dir, nil)
		c.SetFallback(webservletcontainer.FileStoreHandler[daemonSession](fs))
	}
	c.Serve(ctx)
	return c, ln, nil
}

func startMetricsServer(reg *prometheus.Registry, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nlog.Errorf("beamd: metrics server stopped: %v", err)
		}
	}()
	return srv
}

func waitForShutdownSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c
}

func printVersion() {
	fmt.Println("beamd (development build)")
}
