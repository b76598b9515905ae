// Package git is monopub's source-control adapter. Revision lookups go
// through go-git; staging, committing and pushing shell out to the git
// binary so that user hooks, signing and credential helpers apply.
package git
