// Package topology defines the device/connection data model consumed by the
// rendering engine.
//
// The engine treats this data as read-only: a producer (simulator, network
// subscriber, HTTP poller) delivers complete Snapshot replacements on a
// seconds-scale cadence, and the engine reconciles its scene against each
// one. Nothing here references scene objects, so snapshots can be built,
// serialized and discarded freely.
package topology

import (
	"time"
)

// DeviceType classifies a device for display purposes.
type DeviceType string

const (
	TypeServer   DeviceType = "server"
	TypeCamera   DeviceType = "camera"
	TypeSensor   DeviceType = "sensor"
	TypeEndpoint DeviceType = "endpoint"
)

// Status is the health classification of a device.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusHealthy, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// Position is a 3D coordinate supplied by an external layout step.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Metrics holds the per-device utilization figures rendered by the engine.
// Workload drives the body pulsation; Temperature is optional and display-only.
type Metrics struct {
	CPU         float64  `json:"cpu" validate:"min=0,max=100"`
	Memory      float64  `json:"memory" validate:"min=0,max=100"`
	Workload    float64  `json:"workload" validate:"min=0,max=100"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Device is one node of the topology. Devices are externally owned; the
// engine never mutates them.
type Device struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name"`
	Type     DeviceType `json:"type" validate:"oneof=server camera sensor endpoint"`
	Status   Status     `json:"status" validate:"oneof=healthy warning critical"`
	Position *Position  `json:"position"`
	Metrics  *Metrics   `json:"metrics"`
}

// Pos returns the device position, defaulting to the origin when the
// snapshot omitted it.
func (d Device) Pos() Position {
	if d.Position == nil {
		return Position{}
	}
	return *d.Position
}

// Load returns the device metrics, defaulting to zero values when the
// snapshot omitted them.
func (d Device) Load() Metrics {
	if d.Metrics == nil {
		return Metrics{}
	}
	return *d.Metrics
}

// Connection is one directed edge of the topology, stored as an id pair and
// resolved against the device set at rebuild time. Strength is nominally in
// [0,1] but is not enforced upstream; consumers clamp it. Latency is
// informational only and is never rendered.
type Connection struct {
	From     string        `json:"from" validate:"required"`
	To       string        `json:"to" validate:"required"`
	Strength float64       `json:"strength"`
	Latency  time.Duration `json:"latency"`
}

// Snapshot is one complete topology replacement as delivered by a producer.
// SelectedID is the externally-owned selection; empty means no selection.
type Snapshot struct {
	ID          string       `json:"id"`
	CapturedAt  time.Time    `json:"captured_at"`
	Devices     []Device     `json:"devices" validate:"dive"`
	Connections []Connection `json:"connections" validate:"dive"`
	SelectedID  string       `json:"selected_id,omitempty"`
}

// DeviceIndex builds an id → device lookup for the snapshot's device list.
// Duplicate ids collapse to the last occurrence.
func DeviceIndex(devices []Device) map[string]Device {
	idx := make(map[string]Device, len(devices))
	for _, d := range devices {
		idx[d.ID] = d
	}
	return idx
}

// Clamp01 clamps v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
