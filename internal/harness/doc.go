// Package harness runs scripted storefront sessions.
//
// A scenario is a YAML file: backend fixtures, a pre-seeded session
// mirror, and a list of shell command lines. Run starts an in-process mock
// backend, boots an App against it (forced session reset, initial catalog
// load), then executes each line through the shell. After every step the
// harness records a compact snapshot of the store, the current view and
// the persisted session, producing a trace.
//
// Traces are compared against golden files, one JSON object per line:
//
//	go test ./internal/harness -update
//
// regenerates them. Backend ids and clocks are fixed so traces are
// reproducible.
package harness
