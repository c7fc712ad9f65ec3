// Package engine runs merge, unmerge, replace and config transactions.
//
// An Engine holds the transaction mode, the install root (offset), the
// named content sets and the registered triggers. Phases run in the fixed
// order given by types.Phases; at each phase the triggers registered for
// it fire one at a time in ascending priority, ties broken by registration
// order.
//
// Trigger failures are reported through the observer and collected in the
// Result; they do not stop the transaction. Merger and record persistence
// failures do.
package engine
