// Package contents implements content sets: the collection of filesystem
// entries a package owns, keyed by location.
//
// A Set is mutable until frozen. Identity is the entry location only, so
// adding an entry at a location already present replaces the old entry.
// Files must carry a known md5 digest before they can be added; this keeps
// every set serializable to the legacy text record:
//
//	dir <path>
//	fif <path>
//	dev <path>
//	obj <path> <md5-hex> <mtime>
//	sym <path> -> <target> <mtime>
//
// Record binds a Set to a Backing (usually a file) and persists it
// atomically with Flush.
package contents
