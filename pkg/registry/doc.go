// Package registry provides a generic, name keyed registry. It backs the
// checksum handler table and the trigger factory table, both of which are
// populated from init() functions and read during merges.
package registry
