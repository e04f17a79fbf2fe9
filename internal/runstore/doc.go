// Package runstore persists completed comparison runs in SQLite so past
// reports can be listed and re-rendered without re-running the engine.
//
// The store holds a file lock on the store directory for its lifetime;
// only one crosscheck process writes a store at a time.
package runstore
