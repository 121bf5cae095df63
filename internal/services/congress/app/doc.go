// Package server composes and runs the congress process boundary.
//
// It hosts the registration and stand-administration JSON endpoints over a
// shared SQLite store so exhibitor records and their contact inscriptions are
// created from one source of truth.
package server
