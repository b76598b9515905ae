// Package release runs a monorepo release: it publishes every changed
// package, cascades one hop to the packages depending on them, records each
// publish in a Trail and commits the resulting manifest edits.
//
// Runs are strictly sequential. The order of the Trail follows the order of
// the changed packages and, within each, the order of its dependents.
package release
