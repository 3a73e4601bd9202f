package recovery

import (
	"log/slog"
)

// Rotator is implemented by marketplace clients that own recovery
// state. ConsecutiveFailures reflects the count after the failed fetch
// (fetches increment it before the call and reset it on success).
type Rotator interface {
	// RotateProxy switches to the next proxy in the pool. Returns false
	// when no pool is configured.
	RotateProxy() bool
	// RefreshIdentity regenerates the client's request fingerprint.
	RefreshIdentity()
	// ConsecutiveFailures returns the current failure streak.
	ConsecutiveFailures() int
}

// Controller decides whether a failed fetch earns one retry within the
// current cycle, performing the matching rotation as a side effect.
type Controller struct {
	logger *slog.Logger
}

func NewController(logger *slog.Logger) *Controller {
	return &Controller{logger: logger}
}

// ShouldRetry inspects a fetch failure and the client's recovery state.
// Retries are only offered while the failure streak is at most 1, so a
// structurally broken query cannot cause a retry storm. Blocked-class
// failures rotate the proxy; unauthorized-class failures regenerate the
// identity; everything else is surfaced immediately.
func (c *Controller) ShouldRetry(client Rotator, err error) bool {
	failures := client.ConsecutiveFailures()
	if failures > 1 {
		return false
	}

	switch class := Classify(err); class {
	case ClassBlocked:
		if !client.RotateProxy() {
			// No proxy pool — nothing to rotate to.
			return false
		}
		c.logger.Info("rotated proxy after block",
			"consecutive_failures", failures,
		)
		return true

	case ClassUnauthorized:
		client.RefreshIdentity()
		c.logger.Info("regenerated client identity after rejection",
			"consecutive_failures", failures,
		)
		return true

	default:
		return false
	}
}
