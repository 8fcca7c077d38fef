// Command swiftcache runs the forward caching proxy with its dashboard API
// and Prometheus metrics endpoint.
package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vans-aj/SwiftCache/cache"
	"github.com/vans-aj/SwiftCache/metrics/prom"
	"github.com/vans-aj/SwiftCache/proxy"
	"github.com/vans-aj/SwiftCache/scheduler"
	"github.com/vans-aj/SwiftCache/server"
	"github.com/vans-aj/SwiftCache/validate"
)

func main() {
	// ---- Flags ----
	var (
		addr         = flag.String("addr", ":8000", "listen address")
		capacity     = flag.Int64("capacity", 5<<20, "cache capacity in bytes")
		maxFetches   = flag.Int("max-fetches", 8, "max concurrent origin fetches")
		algo         = flag.String("scheduler", scheduler.FIFO, "admission algorithm: fifo | sjf | rr")
		fetchTimeout = flag.Duration("fetch-timeout", 10*time.Second, "origin fetch timeout")
		blocklist    = flag.String("blocklist", "", "comma-separated blocked domains")
		logLevel     = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, parseLevel(*logLevel))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	metrics := prom.New(nil, "swiftcache", "proxy", nil)

	store := cache.New(cache.Options{
		CapacityBytes: *capacity,
		Metrics:       metrics,
	})
	sched, err := scheduler.New(*maxFetches, *algo)
	if err != nil {
		level.Error(logger).Log("msg", "invalid scheduler flag", "err", err)
		os.Exit(1)
	}
	resolver := proxy.NewResolver(proxy.Options{
		Store:        store,
		Scheduler:    sched,
		FetchTimeout: *fetchTimeout,
		Logger:       log.With(logger, "component", "resolver"),
		Metrics:      metrics,
	})

	var seed []string
	if *blocklist != "" {
		seed = strings.Split(*blocklist, ",")
	}
	validator := validate.New(seed...)

	fetcher := proxy.NewFetcher(&http.Client{})
	api := server.New(resolver, fetcher.Fetch, validator, log.With(logger, "component", "server"))

	mux := api.Handler()
	mux.Handle("GET /metrics", promhttp.Handler())

	level.Info(logger).Log("msg", "starting swiftcache",
		"addr", *addr,
		"capacity_bytes", *capacity,
		"max_fetches", *maxFetches,
		"scheduler", *algo,
		"blocked_domains", len(seed),
	)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		level.Error(logger).Log("msg", "server exited", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) level.Option {
	switch s {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
