// cmd/linkstat/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/serial-linktest/internal/poller"
)

type Options struct {
	Address  string `short:"a" long:"address" required:"true" description:"status server host:port"`
	Links    uint16 `short:"n" long:"links" required:"true" description:"number of links to read"`
	Interval int    `short:"i" long:"interval" default:"1000" description:"poll interval (ms)"`
	Timeout  int    `long:"timeout" default:"1000" description:"request timeout (ms)"`
	UnitID   uint8  `long:"unit-id" default:"1" description:"Modbus unit id"`
	LogLevel string `long:"log-level" default:"info" description:"panic|fatal|error|warn|info|debug|trace"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
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

	p, err := poller.Build(poller.Options{
		Endpoint: opts.Address,
		UnitID:   opts.UnitID,
		Links:    opts.Links,
		Interval: time.Duration(opts.Interval) * time.Millisecond,
		Timeout:  time.Duration(opts.Timeout) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("poller build failed: %v", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := make(chan poller.PollResult)
	go p.Run(ctx, out)

	report(ctx, log.WithField("endpoint", opts.Address), out)
}

// report logs only transitions: a failed cycle once, and per-link health changes.
func report(ctx context.Context, log logrus.FieldLogger, in <-chan poller.PollResult) {
	var prev poller.PollResult
	first := true

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if res.Err != nil {
				if first || prev.Err == nil {
					log.WithError(res.Err).Warn("status read failed")
				}
				prev, first = res, false
				continue
			}

			if !first && prev.Err != nil {
				log.Info("status read recovered")
			}
			for _, id := range res.Changed(prev) {
				h := res.Links[id]
				entry := log.WithFields(logrus.Fields{
					"link":     id,
					"register": res.Registers[id],
					"health":   h.String(),
				})
				if h.Reported && !h.Healthy() {
					entry.Warn("link health")
				} else {
					entry.Info("link health")
				}
			}
			prev, first = res, false
		}
	}
}
