package packweaver

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Compose selected content packs into installable archives"
	MsgExportShort    = "Merge a selection into a named pack archive"
	MsgPlanShort      = "Show the sources a selection resolves to, in merge order"
	MsgValidateShort  = "Load and validate content type bundles"
	MsgInspectShort   = "Describe the bundle of a content type"
	MsgGenConfigShort = "Print the effective configuration as TOML"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgSanitizedName = "Pack name %q sanitized to %q\n"
	MsgVersionFormat = "packweaver %s (commit %s, built %s)\n"

	// Error messages
	MsgErrNoCommand     = "no command specified"
	MsgErrLoadSettings  = "failed to load settings: %w"
	MsgErrReadSelection = "failed to read selection: %w"
	MsgErrOutputFormat  = "invalid --output value: %w"
	MsgErrEmptyName     = "pack name %q has no usable characters"
	MsgErrValidation    = "%d of %d content types failed validation"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig        = "Settings file (defaults to packweaver.toml in the content root)"
	MsgFlagContentRoot   = "Directory holding the content families"
	MsgFlagOutput        = "Output format: auto, terminal, text, json or yaml"
	MsgFlagType          = "Content type to export (e.g. resource, behaviour)"
	MsgFlagName          = "Name of the exported pack"
	MsgFlagEngineVersion = "Minimum engine version written into the manifests"
	MsgFlagSelection     = "Selection JSON file, or - to read it from stdin"
	MsgFlagNoArchive     = "Leave the merged tree in the work directory instead of archiving it"
	MsgFlagDefaults      = "Print the commented built-in defaults instead of the effective settings"
)

// Long descriptions
const (
	MsgRootLong = `packweaver builds Minecraft add-on packs from a library of small content packs.

A selection names identifiers per category. packweaver resolves it against the
content type's bundle, merges every contributing source into a fresh tree with
generated manifests, and archives the result as .mcpack or .mcaddon.`

	MsgExportLong = `Export resolves the selection, merges each contributing source in priority
order, writes the manifests and icon, and archives the tree into the work
directory. The pack name is sanitized to letters, digits, '-' and '_'.`

	MsgExportExample = `  packweaver export --type resource --name MyPack --selection selection.json
  cat selection.json | packweaver export -t behaviour -n Survival --mc-version 1.20.10 -s -`

	MsgPlanLong = `Plan resolves a selection without writing anything. Compatibility groups come
first, largest arity first, followed by individually selected identifiers.`

	MsgValidateLong = `Validate loads the bundle of each named content type, or of every configured
type when none is named, and reports configuration errors.`
)
