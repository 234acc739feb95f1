package source

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Status thresholds for simulated devices, expressed as CPU percent.
const (
	simWarningCPU  = 60.0
	simCriticalCPU = 90.0
)

// Profile describes one simulated device: its identity, its fixed layout
// position (layout is computed externally, so the fleet carries it) and
// the metric ranges it normally lives in.
type Profile struct {
	ID       string
	Name     string
	Type     topology.DeviceType
	Position topology.Position

	CPURange  [2]float64
	MemRange  [2]float64
	LoadRange [2]float64

	// FlapChance is the per-tick probability the device drops out of the
	// snapshot for a few intervals, exercising bundle destroy/create.
	FlapChance float64
}

// Link is a fixed connection of the simulated fleet; strength jitters a
// little around the configured value each tick.
type Link struct {
	From     string
	To       string
	Strength float64
	Latency  time.Duration
}

// SimulatorConfig tunes the simulator.
type SimulatorConfig struct {
	Interval    time.Duration
	AnomalyRate float64
	Seed        int64 // 0 means non-deterministic
	Profiles    []Profile
	Links       []Link
	Logger      logging.Logger
	Metrics     *metrics.Registry
}

type simDevice struct {
	profile Profile
	cpu     float64
	mem     float64
	load    float64
	anomaly int // ticks the current anomaly still lasts
	offline int // ticks the device stays out of the snapshot
}

// Simulator generates a synthetic fleet with drifting metrics, anomaly
// injection and occasional device flaps.
type Simulator struct {
	cfg SimulatorConfig
	rng *rand.Rand
	log logging.Logger

	devices []*simDevice
	ch      chan topology.Snapshot
	ticks   int
}

// NewSimulator creates a simulator. An empty Profiles list gets the
// default fleet.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles, cfg.Links = DefaultFleet()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := &Simulator{
		cfg: cfg,
		rng: rng,
		log: cfg.Logger,
		ch:  make(chan topology.Snapshot, 1),
	}
	for _, p := range cfg.Profiles {
		s.devices = append(s.devices, &simDevice{
			profile: p,
			cpu:     mid(p.CPURange),
			mem:     mid(p.MemRange),
			load:    mid(p.LoadRange),
		})
	}
	return s
}

func (s *Simulator) Snapshots() <-chan topology.Snapshot {
	return s.ch
}

// Run emits one snapshot immediately, then one per interval.
func (s *Simulator) Run(ctx context.Context) error {
	defer close(s.ch)

	deliver(ctx, s.ch, s.Generate())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			deliver(ctx, s.ch, s.Generate())
		}
	}
}

func (s *Simulator) Close() error {
	return nil
}

// Generate advances the fleet one tick and returns the resulting
// snapshot. Exposed so tests can drive the simulator without timers.
func (s *Simulator) Generate() topology.Snapshot {
	s.ticks++

	var devices []topology.Device
	for _, d := range s.devices {
		s.step(d)
		if d.offline > 0 {
			d.offline--
			continue
		}

		status := topology.StatusHealthy
		switch {
		case d.cpu >= simCriticalCPU:
			status = topology.StatusCritical
		case d.cpu >= simWarningCPU:
			status = topology.StatusWarning
		}

		pos := d.profile.Position
		m := topology.Metrics{CPU: round1(d.cpu), Memory: round1(d.mem), Workload: round1(d.load)}
		devices = append(devices, topology.Device{
			ID:       d.profile.ID,
			Name:     d.profile.Name,
			Type:     d.profile.Type,
			Status:   status,
			Position: &pos,
			Metrics:  &m,
		})
	}

	// Links are emitted even when an endpoint is flapped offline; the
	// engine drops dangling edges itself.
	var conns []topology.Connection
	for _, l := range s.cfg.Links {
		strength := topology.Clamp01(l.Strength + (s.rng.Float64()-0.5)*0.2)
		conns = append(conns, topology.Connection{
			From:     l.From,
			To:       l.To,
			Strength: strength,
			Latency:  l.Latency + time.Duration(s.rng.Intn(20))*time.Millisecond,
		})
	}

	snap := topology.Snapshot{
		ID:          uuid.New().String(),
		CapturedAt:  time.Now(),
		Devices:     devices,
		Connections: conns,
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordSnapshot("simulator", "ok", len(devices))
	}
	return snap
}

// step walks one device's metrics: a bounded random walk inside its
// normal range, an occasional multi-tick anomaly spike and an occasional
// flap.
func (s *Simulator) step(d *simDevice) {
	walk := func(v float64, r [2]float64) float64 {
		v += (s.rng.Float64() - 0.5) * (r[1] - r[0]) * 0.25
		if v < r[0] {
			v = r[0]
		}
		if v > r[1] {
			v = r[1]
		}
		return v
	}
	d.cpu = walk(d.cpu, d.profile.CPURange)
	d.mem = walk(d.mem, d.profile.MemRange)
	d.load = walk(d.load, d.profile.LoadRange)

	if d.anomaly > 0 {
		d.anomaly--
		d.cpu = 85 + s.rng.Float64()*15
	} else if s.rng.Float64() < s.cfg.AnomalyRate/float64(len(s.devices)) {
		d.anomaly = 2 + s.rng.Intn(3)
		s.log.Debug("anomaly injected", logging.DeviceID(d.profile.ID))
	}

	if d.offline == 0 && d.profile.FlapChance > 0 && s.rng.Float64() < d.profile.FlapChance {
		d.offline = 2 + s.rng.Intn(3)
		s.log.Debug("device flapped offline", logging.DeviceID(d.profile.ID))
	}
}

// DefaultFleet is the built-in demo topology: a small data-center ring of
// servers fronting cameras, sensors and endpoints.
func DefaultFleet() ([]Profile, []Link) {
	profiles := []Profile{
		{ID: "web-server-01", Name: "web-01", Type: topology.TypeServer, Position: topology.Position{X: 0, Y: 0, Z: 0}, CPURange: [2]float64{15, 45}, MemRange: [2]float64{30, 60}, LoadRange: [2]float64{20, 70}},
		{ID: "web-server-02", Name: "web-02", Type: topology.TypeServer, Position: topology.Position{X: 4, Y: 0, Z: -2}, CPURange: [2]float64{15, 45}, MemRange: [2]float64{30, 60}, LoadRange: [2]float64{20, 70}},
		{ID: "db-server-01", Name: "db-01", Type: topology.TypeServer, Position: topology.Position{X: -4, Y: 0, Z: -2}, CPURange: [2]float64{30, 70}, MemRange: [2]float64{50, 85}, LoadRange: [2]float64{40, 90}},
		{ID: "cache-server-01", Name: "cache-01", Type: topology.TypeServer, Position: topology.Position{X: 0, Y: 2.5, Z: -4}, CPURange: [2]float64{10, 30}, MemRange: [2]float64{60, 90}, LoadRange: [2]float64{10, 50}},
		{ID: "cam-lobby", Name: "lobby-cam", Type: topology.TypeCamera, Position: topology.Position{X: 7, Y: 1.5, Z: 2}, CPURange: [2]float64{20, 50}, MemRange: [2]float64{20, 40}, LoadRange: [2]float64{30, 80}, FlapChance: 0.02},
		{ID: "cam-dock", Name: "dock-cam", Type: topology.TypeCamera, Position: topology.Position{X: -7, Y: 1.5, Z: 2}, CPURange: [2]float64{20, 50}, MemRange: [2]float64{20, 40}, LoadRange: [2]float64{30, 80}, FlapChance: 0.02},
		{ID: "sensor-hvac", Name: "hvac", Type: topology.TypeSensor, Position: topology.Position{X: 3, Y: -2.5, Z: 3}, CPURange: [2]float64{1, 10}, MemRange: [2]float64{5, 15}, LoadRange: [2]float64{5, 25}, FlapChance: 0.04},
		{ID: "sensor-power", Name: "power", Type: topology.TypeSensor, Position: topology.Position{X: -3, Y: -2.5, Z: 3}, CPURange: [2]float64{1, 10}, MemRange: [2]float64{5, 15}, LoadRange: [2]float64{5, 25}, FlapChance: 0.04},
		{ID: "endpoint-ops", Name: "ops-desk", Type: topology.TypeEndpoint, Position: topology.Position{X: 6, Y: -1, Z: -4}, CPURange: [2]float64{5, 60}, MemRange: [2]float64{20, 70}, LoadRange: [2]float64{10, 60}},
		{ID: "endpoint-noc", Name: "noc-desk", Type: topology.TypeEndpoint, Position: topology.Position{X: -6, Y: -1, Z: -4}, CPURange: [2]float64{5, 60}, MemRange: [2]float64{20, 70}, LoadRange: [2]float64{10, 60}},
	}
	links := []Link{
		{From: "web-server-01", To: "db-server-01", Strength: 0.9, Latency: 2 * time.Millisecond},
		{From: "web-server-02", To: "db-server-01", Strength: 0.8, Latency: 2 * time.Millisecond},
		{From: "web-server-01", To: "cache-server-01", Strength: 0.7, Latency: time.Millisecond},
		{From: "web-server-02", To: "cache-server-01", Strength: 0.7, Latency: time.Millisecond},
		{From: "cam-lobby", To: "web-server-01", Strength: 0.5, Latency: 8 * time.Millisecond},
		{From: "cam-dock", To: "web-server-02", Strength: 0.5, Latency: 9 * time.Millisecond},
		{From: "sensor-hvac", To: "db-server-01", Strength: 0.3, Latency: 15 * time.Millisecond},
		{From: "sensor-power", To: "db-server-01", Strength: 0.3, Latency: 15 * time.Millisecond},
		{From: "endpoint-ops", To: "web-server-01", Strength: 0.4, Latency: 5 * time.Millisecond},
		{From: "endpoint-noc", To: "web-server-02", Strength: 0.4, Latency: 5 * time.Millisecond},
	}
	return profiles, links
}

func mid(r [2]float64) float64 {
	return (r[0] + r[1]) / 2
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
