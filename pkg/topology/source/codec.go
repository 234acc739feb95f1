package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Wire format: a 4-byte magic/version header followed by a snappy block
// holding the JSON-encoded snapshot. The header catches cross-version and
// non-snapshot traffic before the decompressor sees it.
var wireMagic = []byte("TV01")

// Common codec errors
var (
	ErrBadMagic   = errors.New("payload is not a topology snapshot (bad magic)")
	ErrShortFrame = errors.New("payload shorter than the frame header")
)

// Encode serializes a snapshot for transport.
func Encode(snap *topology.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, raw)
	buf := make([]byte, 0, len(wireMagic)+len(compressed))
	buf = append(buf, wireMagic...)
	buf = append(buf, compressed...)
	return buf, nil
}

// Decode parses a transported snapshot.
func Decode(payload []byte) (*topology.Snapshot, error) {
	if len(payload) < len(wireMagic) {
		return nil, ErrShortFrame
	}
	if !bytes.Equal(payload[:len(wireMagic)], wireMagic) {
		return nil, ErrBadMagic
	}
	raw, err := snappy.Decode(nil, payload[len(wireMagic):])
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap topology.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
