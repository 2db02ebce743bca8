// cmd/linktest/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/serial-linktest/internal/config"
	"github.com/tamzrod/serial-linktest/internal/link"
	"github.com/tamzrod/serial-linktest/internal/outcome"
	"github.com/tamzrod/serial-linktest/internal/serialport"
	"github.com/tamzrod/serial-linktest/internal/server"
	"github.com/tamzrod/serial-linktest/internal/status"
)

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] PORT..."

	ports, err := parser.Parse()
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log := logrus.New()
	lvl, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatalf("bad log level: %v", err)
	}
	log.SetLevel(lvl)

	if err := conflicts(&opts); err != nil {
		log.Fatalf("bad flags: %v", err)
	}

	available, err := serialport.List()
	if err != nil {
		log.WithError(err).Warn("serial port enumeration failed")
	}

	if opts.List {
		for _, name := range available {
			fmt.Println(name)
		}
		return
	}
	log.WithField("ports", available).Info("available serial ports")

	// --------------------
	// Load + validate config
	// --------------------

	cfg := config.Default()
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}
	apply(parser, &opts, ports, cfg)

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)
	lt := cfg.LinkTest

	policy, err := status.ParsePolicy(lt.FaultPolicy)
	if err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	// --------------------
	// Open every link (all or nothing)
	// --------------------

	opened, closePorts, err := serialport.OpenAll(serialport.Configs(lt))
	if err != nil {
		log.Fatalf("serial open failed: %v", err)
	}

	// --------------------
	// Outcome channel + status server
	// --------------------

	ch := outcome.NewChannel(lt.QueueSize)

	var srv *server.Server
	var sink link.Sink
	switch {
	case !lt.Status.Enabled():
		log.Info("status server disabled (no listen address)")
	case lt.Transmitters() == 0:
		log.Warn("status server disabled: no transmitter links report outcomes")
	default:
		agg := status.NewAggregator(ch, policy, log.WithField("component", "aggregator"))
		srv, err = server.Build(lt, agg, log.WithField("component", "status"))
		if err == nil {
			err = srv.Start()
		}
		if err != nil {
			_ = closePorts()
			log.Fatalf("status server failed: %v", err)
		}
		sink = ch
	}

	// --------------------
	// Build per-link workers
	// --------------------

	workers := make([]*link.Worker, 0, len(opened))
	for i, p := range opened {
		w, err := link.Build(lt, i, p, sink, log)
		if err != nil {
			_ = closePorts()
			log.Fatalf("link build failed (link=%d port=%s): %v", i, p.Name(), err)
		}
		workers = append(workers, w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *link.Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}

	log.WithFields(logrus.Fields{
		"links":        len(workers),
		"transmitters": lt.Transmitters(),
		"policy":       policy,
	}).Info("link test running")

	<-ctx.Done()
	log.Info("shutting down")

	// --------------------
	// Shutdown: workers, channel, server, ports
	// --------------------

	wg.Wait()
	ch.Close()
	if srv != nil {
		if err := srv.Stop(); err != nil {
			log.WithError(err).Warn("status server stop failed")
		}
	}
	if err := closePorts(); err != nil {
		log.WithError(err).Warn("serial close failed")
	}
	if d := ch.Dropped(); d > 0 {
		log.WithField("dropped", d).Warn("outcome events dropped during run")
	}
}
