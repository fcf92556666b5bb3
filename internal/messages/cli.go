package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "nsw"
	// RootShort is the short description for the root command.
	RootShort = "Install and switch between Node.js versions"

	RootLong = `nsw resolves partial version tags (12, v12.22, v12.22.1, lts, latest)
against the Node.js release catalog, installs releases side by side, and
points a single "current" link at the active one.

Add the current link to PATH once:
  %s`

	RootVersionFlag  = "Print version and exit"
	RootFlagRoot     = "Store root directory (overrides NSW_HOME; default ~/.nsw)"
	RootFlagPlatform = "Platform tag to resolve for (win-x64, win-x86, win-arm64)"
	RootFlagVerbose  = "Log resolution and install steps to stderr"
	RootFlagOffline  = "Use the cached release catalog instead of fetching it"
	RootErrorFmt     = "Error: %v"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print the nsw version"
	VersionLineFmt   = "nsw %s\n"

	// InstallUse is the install command usage.
	InstallUse        = "install <version>"
	InstallShort      = "Download and install a Node.js version"
	InstallFlagUse    = "Activate the version after installing it"
	InstallDoneFmt    = "Installed %s (%s) at %s\n"
	InstallUseHintFmt = "Run `nsw use %s` to activate it.\n"
	InstallUsage      = "install requires a version argument, e.g. `nsw install 20`"

	UseUse         = "use <version>"
	UseShort       = "Activate an installed Node.js version"
	UseUsage       = "use requires a version argument, e.g. `nsw use 20`"
	UseDoneFmt     = "Now using node %s (%s)\n"
	UsePathHintFmt = "Ensure %s is on your PATH.\n"

	DefaultUse     = "default <version>"
	DefaultShort   = "Record an installed version as the default and activate it"
	DefaultUsage   = "default requires a version argument, e.g. `nsw default 20`"
	DefaultDoneFmt = "Default set to node %s (%s)\n"

	RemoveUse            = "remove <version>"
	RemoveShort          = "Remove an installed Node.js version"
	RemoveUsage          = "remove requires a version argument, e.g. `nsw remove 20`"
	RemoveFlagYes        = "Remove the active version without asking"
	RemoveConfirmFmt     = "node %s (%s) is the active version. Remove it anyway?"
	RemoveCancelled      = "Removal cancelled."
	RemoveDoneFmt        = "Removed node %s (%s)\n"
	RemoveClearedLinkFmt = "node %s was active; no version is active now.\n"

	ListUse            = "list"
	ListShort          = "List installed versions (or remote versions with --remote)"
	ListFlagRemote     = "List versions available in the release catalog"
	ListFlagLTS        = "With --remote, list only LTS releases"
	ListNoneInstalled  = "No versions installed."
	ListInstalledHead  = "Installed versions:"
	ListRemoteHead     = "Available versions:"
	ListRemoteNone     = "No versions available."
	ListLineFmt        = "%s %-10s %-10s%s\n"
	ListMarkerActive   = "*"
	ListMarkerInactive = " "
	ListDefaultSuffix  = " (default)"
	ListRemoteLineFmt  = "  %-10s %-10s %s\n"

	CurrentUse     = "current"
	CurrentShort   = "Show the active Node.js version"
	CurrentNone    = "No active version."
	CurrentLineFmt = "%s (%s)\n"
	CurrentPathFmt = "  %s\n"
)
