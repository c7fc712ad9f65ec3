package commands

// Short messages (one-liners)
const (
	MsgRootShort = "Inspect package content records and run merge triggers"
	MsgRootLong  = `pkgmerge works on the content records a package manager keeps for every
installed package, and runs the triggers (library cache, info index) that
follow a merge, unmerge, replace or config transaction.`

	MsgContentsShort = "Inspect content records"
	MsgShowShort     = "Print the entries of a content record"
	MsgCheckShort    = "Verify a content record against the installed files"
	MsgDiffShort     = "Compare two content records"
	MsgScanShort     = "Build a content record from a directory tree"
	MsgTriggersShort = "Inspect the available triggers"
	MsgListShort     = "List trigger factories and their settings"
	MsgRunShort      = "Run a transaction's trigger phases"
	MsgRunLong       = `Run walks the phases of a transaction in the given mode (install,
uninstall, replace or config) against the install root, firing every
enabled trigger. Content sets come from records or an image directory;
nothing is copied onto the filesystem.`
	MsgConfigShort     = "Inspect configuration"
	MsgConfigShowShort = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Configuration file (default $XDG_CONFIG_HOME/pkgmerge/config.toml)"
	MsgFlagRoot     = "Install root (default $PKGMERGE_ROOT or /)"
	MsgFlagFormat   = "Output format: auto, term, text, yaml, toml, json"
	MsgFlagMtime    = "Also compare modification times"
	MsgFlagOutput   = "Write the scanned record to this path instead of printing it"
	MsgFlagInstall  = "Content record providing the install set"
	MsgFlagImage    = "Image directory scanned into the install set"
	MsgFlagUninst   = "Content record providing the uninstall set"
	MsgFlagTriggers = "Triggers to register (default from configuration)"
	MsgFlagSave     = "Flush the install record and delete the uninstall record"
	MsgFlagDefaults = "Print the embedded defaults instead"

	MsgVersionFormat = "pkgmerge version %s\n  commit: %s\n  built:  %s\n"
	MsgPhasesFormat  = "%s transaction complete: %s\n"
	MsgWroteRecord   = "Wrote %d entries to %s\n"
	MsgHelperMissing = "missing"
)

// Error messages
const (
	MsgErrProblems  = "%d problem(s) found in %s"
	MsgErrBothSets  = "--install and --image are mutually exclusive"
	MsgErrNoFormat  = "format %s is not supported here"
	MsgErrNeedImage = "--save with --image needs --install to name the record to write"
)
