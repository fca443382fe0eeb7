// Package clientstate holds UI-facing session state and commits it to disk.
//
// Client state is split into a global scope and a project scope, each
// committed to its own directory as one JSON file per key. Commits are not
// transactional: a failure writing one scope leaves the other written.
package clientstate
