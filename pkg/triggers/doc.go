// Package triggers implements reactive work bound to merge phases.
//
// A Trigger declares a label, a priority (ascending, default 50), the hooks
// it runs at, the engine modes it supports and the content sets it needs.
// Register validates a trigger against an engine and adds one registration
// per hook the engine does not block. Call resolves the declared content
// sets and invokes the trigger.
//
// Content set requests come in three shapes: AllCsets passes the raw
// mapping through, NamedCsets picks sets by name in order, and NoCsets
// passes nothing.
//
// Two triggers ship with the package. LdConfig regenerates the shared
// library cache when a library directory changed; InfoRegen rebuilds info
// directory indexes and defers that work to the final phase of a replace.
package triggers
