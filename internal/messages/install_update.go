package messages

// Catalog, resolution, and install messages.
const (
	CatalogFetchFmt          = "%w: %w"
	CatalogReadCacheFmt      = "%w: read cache %s: %w"
	CatalogWriteCacheFmt     = "%w: write cache %s: %w"
	CatalogDecodeFmt         = "decode release catalog: %w"
	CatalogInvalidSourceFmt  = "%w: %s: %w"
	CatalogNoValidEntries    = "release catalog contains no valid entries"
	CatalogDroppedEntryFmt   = "dropping catalog entry %d: %v"
	CatalogInvalidLTSFmt     = "invalid lts value %s"
	CatalogOfflineMissingFmt = "%w: no cached catalog at %s; run without --offline (or unset %s) to fetch it"

	ResolveNoMatchFmt             = "no release matches %q"
	ResolveNoBuildFmt             = "no build of %s exists for %s"
	ResolvePlatformUnavailableFmt = "%s has no %s build, but a %s build exists; re-run with --platform %s"
	ResolveNotInstalledFmt        = "no installed version matches %q for %s; run `nsw install %s` first"
	ResolveProbeFailedFmt         = "availability probe for %s (%s) failed; treating as unavailable: %v"

	InstallLayoutRootRequired   = "store root is required"
	InstallDownloadFmt          = "%w: %w"
	InstallCreateDirFmt         = "create directory %s: %w"
	InstallCreateTempFmt        = "create temp file: %w"
	InstallCloseTempFmt         = "close temp file: %w"
	InstallExtractFmt           = "%w: extract %s: %w"
	InstallLocateNoChildFmt     = "%w: archive for %s (%s) contains no top-level directory"
	InstallLocateReadFmt        = "read %s: %w"
	InstallSwapFmt              = "move install into place at %s: %w"
	InstallRemoveFmt            = "remove %s: %w"
	InstallListFmt              = "list installed versions in %s: %w"
	InstallCollaboratorRequired = "%s is required"
	InstallDownloadingFmt       = "Downloading node %s (%s)...\n"
	InstallExtractingFmt        = "Extracting node %s...\n"
	InstallRestoreFmt           = "restore previous install at %s: %w"
)
