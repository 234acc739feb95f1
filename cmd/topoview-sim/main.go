// Command topoview-sim generates a demo device fleet and publishes live
// topology snapshots over a mangos PUB socket for topoview to subscribe to.
//
// Usage:
//
//	topoview-sim -listen tcp://127.0.0.1:7780 -interval 2s -anomaly 0.3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/topology/source"
)

func main() {
	listen := flag.String("listen", "tcp://127.0.0.1:7780", "mangos PUB listen address")
	interval := flag.Duration("interval", 2*time.Second, "snapshot cadence")
	anomaly := flag.Float64("anomaly", 0.2, "per-device anomaly probability per tick")
	seed := flag.Int64("seed", 0, "deterministic RNG seed (0 = random)")
	flag.Parse()

	log := logging.NewJSONLogger(os.Stderr, logging.InfoLevel)

	profiles, links := source.DefaultFleet()
	sim := source.NewSimulator(source.SimulatorConfig{
		Interval:    *interval,
		AnomalyRate: *anomaly,
		Seed:        *seed,
		Profiles:    profiles,
		Links:       links,
		Logger:      log,
	})

	pub, err := source.NewPublisher(*listen, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "publisher: %v\n", err)
		os.Exit(1)
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sim.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("simulator stopped", logging.Error(err))
		}
	}()

	fmt.Printf("🛰️  topoview-sim: %d devices, %d links on %s every %s\n",
		len(profiles), len(links), *listen, *interval)

	published := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\npublished %d snapshots, shutting down\n", published)
			return
		case snap, ok := <-sim.Snapshots():
			if !ok {
				return
			}
			if err := pub.Publish(&snap); err != nil {
				log.Error("publish failed", logging.Error(err), logging.SnapshotID(snap.ID))
				continue
			}
			published++
			log.Info("snapshot published",
				logging.SnapshotID(snap.ID),
				logging.Count(len(snap.Devices)))
		}
	}
}
