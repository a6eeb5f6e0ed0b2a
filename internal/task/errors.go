package task

import "errors"

// Failure taxonomy for publish and consume paths. Handlers wrap one of these
// sentinels (errors.Is) to steer the acknowledgment policy; anything else is
// treated as a transient failure and retried up to the attempt budget.
var (
	// ErrBrokerUnavailable is returned by Publish when the broker refused
	// the message. Publishes are not retried automatically; re-publishing
	// is cheap and the awaker sweep re-derives lost work anyway.
	ErrBrokerUnavailable = errors.New("broker unavailable")

	// ErrPrerequisiteNotReady means an upstream artifact does not exist
	// yet. The message is acknowledged and dropped: the periodic sweep
	// re-discovers the work once the prerequisite lands, which beats a
	// tight requeue loop.
	ErrPrerequisiteNotReady = errors.New("prerequisite not ready")

	// ErrStructuralInconsistency means persisted state contradicts the
	// message (entity missing, broken reference). Retrying cannot help;
	// the message is dead-lettered immediately.
	ErrStructuralInconsistency = errors.New("structural inconsistency")
)
