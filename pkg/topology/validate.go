package topology

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validation limits applied at the snapshot boundary. The engine itself
// accepts anything and defaults malformed fields; these limits exist so a
// misbehaving producer is caught and logged before its snapshot is applied.
var (
	MaxDevices     = 10000
	MaxConnections = 50000
)

// ErrSnapshotTooLarge is returned when a snapshot exceeds the device or
// connection limits.
var ErrSnapshotTooLarge = errors.New("snapshot exceeds size limits")

// ValidateSnapshot checks a snapshot at the producer boundary. A nil return
// means the snapshot is safe to deliver. Devices with missing position or
// metrics are NOT rejected here — the engine defaults those per its
// contract — but unknown enum values and oversized payloads are.
func ValidateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	if len(snap.Devices) > MaxDevices {
		return fmt.Errorf("%w: %d devices (max %d)", ErrSnapshotTooLarge, len(snap.Devices), MaxDevices)
	}
	if len(snap.Connections) > MaxConnections {
		return fmt.Errorf("%w: %d connections (max %d)", ErrSnapshotTooLarge, len(snap.Connections), MaxConnections)
	}

	if err := validate.Struct(snap); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into something readable
// in a log line.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("snapshot validation failed on %s (%s rule)", first.Namespace(), first.Tag())
	}
	return fmt.Errorf("snapshot validation failed: %w", err)
}
