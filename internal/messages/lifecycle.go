package messages

// Lifecycle messages.
const (
	LifecycleDependencyMissingFmt = "%w: %s"
	LifecycleTagRequired          = "version tag is required"
)
