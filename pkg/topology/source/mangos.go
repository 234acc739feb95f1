package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// snapshotTopic prefixes every published frame so subscribers can filter.
var snapshotTopic = []byte("topo ")

// recvDeadline bounds each Recv so Run can observe ctx cancellation.
const recvDeadline = 500 * time.Millisecond

// Publisher pushes snapshots to any number of subscribers over a mangos
// PUB socket.
type Publisher struct {
	sock mangos.Socket
	log  logging.Logger
}

// NewPublisher creates a publisher listening on addr (any mangos
// transport URL, e.g. tcp://0.0.0.0:7310 or inproc://topo).
func NewPublisher(addr string, log logging.Logger) (*Publisher, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	log.Info("snapshot publisher listening", logging.Address(addr))
	return &Publisher{sock: sock, log: log}, nil
}

// Publish encodes and broadcasts one snapshot.
func (p *Publisher) Publish(snap *topology.Snapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(snapshotTopic)+len(payload))
	frame = append(frame, snapshotTopic...)
	frame = append(frame, payload...)
	return p.sock.Send(frame)
}

// Close closes the socket.
func (p *Publisher) Close() error {
	return p.sock.Close()
}

// Subscriber receives pushed snapshots over a mangos SUB socket.
type Subscriber struct {
	addr string
	sock mangos.Socket
	log  logging.Logger
	met  *metrics.Registry
	ch   chan topology.Snapshot
}

// NewSubscriber creates a subscriber dialing addr.
func NewSubscriber(addr string, log logging.Logger, met *metrics.Registry) (*Subscriber, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create sub socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, snapshotTopic); err != nil {
		sock.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, recvDeadline); err != nil {
		sock.Close()
		return nil, fmt.Errorf("set recv deadline: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Subscriber{
		addr: addr,
		sock: sock,
		log:  log,
		met:  met,
		ch:   make(chan topology.Snapshot, 1),
	}, nil
}

func (s *Subscriber) Snapshots() <-chan topology.Snapshot {
	return s.ch
}

// Run receives, decodes and validates snapshots until ctx is cancelled.
// Malformed frames are counted and skipped, never fatal.
func (s *Subscriber) Run(ctx context.Context) error {
	defer close(s.ch)
	s.log.Info("snapshot subscriber running", logging.Address(s.addr), logging.SourceKind("mangos"))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frame, err := s.sock.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			if errors.Is(err, mangos.ErrClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("recv: %w", err)
		}
		if len(frame) < len(snapshotTopic) {
			continue
		}

		snap, err := Decode(frame[len(snapshotTopic):])
		if err != nil {
			s.recordSnapshot("decode_error", 0)
			s.log.Warn("undecodable snapshot frame", logging.Error(err))
			continue
		}
		if err := topology.ValidateSnapshot(snap); err != nil {
			s.recordSnapshot("invalid", 0)
			s.log.Warn("invalid snapshot skipped", logging.SnapshotID(snap.ID), logging.Error(err))
			continue
		}

		s.recordSnapshot("ok", len(snap.Devices))
		deliver(ctx, s.ch, *snap)
	}
}

func (s *Subscriber) recordSnapshot(status string, devices int) {
	if s.met != nil {
		s.met.RecordSnapshot("mangos", status, devices)
	}
}

// Close closes the socket, unblocking Run.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
