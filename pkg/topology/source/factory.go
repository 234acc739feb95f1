package source

import (
	"fmt"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
)

// New builds the snapshot source selected by cfg.
func New(cfg config.Source, log logging.Logger, met *metrics.Registry) (Source, error) {
	switch cfg.Kind {
	case "simulator":
		return NewSimulator(SimulatorConfig{
			Interval:    cfg.Interval,
			AnomalyRate: cfg.AnomalyRate,
			Seed:        cfg.Seed,
			Logger:      log,
			Metrics:     met,
		}), nil
	case "mangos":
		return NewSubscriber(cfg.Address, log, met)
	case "http":
		return NewPoller(cfg.Address, cfg.Interval, log, met), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
