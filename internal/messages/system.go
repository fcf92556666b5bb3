package messages

// System messages for transport, locking, extraction, and filesystem operations.
const (
	FetchClientRequired         = "http client is required"
	FetchCreateRequestFmt       = "create request %s: %w"
	FetchFailedFmt              = "fetch %s: %w"
	FetchNotFoundFmt            = "fetch %s: %w (HTTP 404)"
	FetchUnexpectedStatusFmt    = "fetch %s: unexpected status %s"
	FetchTooLargeFmt            = "fetch %s: response too large (%d bytes > limit %d bytes)"
	FetchTimeoutFmt             = "fetch %s: request timed out\n\nRemediation:\n  - Check your internet connection\n  - If behind a proxy, ensure HTTP_PROXY/HTTPS_PROXY are set\n  - Retry the command\n  - Set a mirror with NSW_MIRROR or `mirror` in settings.toml"
	FetchStalledFmt             = "fetch %s: no data received for %s\n\nRemediation:\n  - Check your internet connection\n  - Retry the command\n  - Raise network.timeout_seconds in settings.toml"
	FetchTruncateTempFileFmt    = "truncate temp file: %w"
	FetchResetTempFileOffsetFmt = "reset temp file offset: %w"
	FetchRetryBudgetExhausted   = "retry budget exhausted"

	LockOpenFmt    = "open lock %s: %w"
	LockFmt        = "lock %s: %w"
	LockTimeoutFmt = "timed out waiting for store lock after %s; another nsw command may be running"

	ArchiveOpenFmt          = "open archive %s: %w"
	ArchiveIllegalPathFmt   = "archive entry %q escapes the extraction directory"
	ArchiveMkdirFmt         = "mkdir %s: %w"
	ArchiveCreateFileFmt    = "create file %s: %w"
	ArchiveCopyFileFmt      = "copy file %s: %w"
	ArchiveOpenEntryFmt     = "open archive entry %s: %w"
	ArchiveUnsupportedEntry = "unsupported archive entry %q"

	PlatformUnsupportedArchFmt = "unsupported architecture %q; expected one of %s"
	PlatformInvalidTagFmt      = "unknown platform %q; expected one of %s"

	LinkReadFmt         = "read current link %s: %w"
	LinkNotSymlinkFmt   = "%s exists and is not a link; move it aside and retry"
	LinkTargetMissing   = "activation target is required"
	LinkTargetStatFmt   = "activation target %s: %w"
	LinkTargetNotDirFmt = "activation target %s is not a directory"
	LinkCreateFmt       = "create link %s: %w"
	LinkReplaceFmt      = "replace link %s: %w"
	LinkRemoveFmt       = "remove link %s: %w"
	LinkDanglingWarnFmt = "current link points at %s, which no longer exists"
	LinkOutsideStoreFmt = "current link points at %s, outside %s"
)
