// Package types defines the vocabulary shared by the engine and its
// triggers: transaction modes, hook names, content set names and the
// observer used for user visible warnings.
package types
