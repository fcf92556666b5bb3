package messages

// Config and settings messages.
const (
	ConfigReadFmt         = "read config %s: %w"
	ConfigDecodeFmt       = "decode config %s: %w"
	ConfigWriteFmt        = "write config %s: %w"
	ConfigMissingDefault  = "config default version is required"
	ConfigMissingPlatform = "config platform is required"

	SettingsReadFmt       = "read settings %s: %w"
	SettingsDecodeFmt     = "invalid settings %s: %w"
	SettingsInvalidFmt    = "%w: %s: %s"
	SettingsInvalidMirror = "mirror %q must be an http(s) URL"
	SettingsFieldFmt      = "%s fails %q"
	SettingsHomeDirFmt    = "resolve home directory: %w"
	SettingsExpandRootFmt = "expand store root %q: %w"
)
