// Package store persists a record of every pipeline operation in a SQLite
// database under the configured store directory. Records capture what went
// in, what came out, and whether the stage passed the original through, so
// compression effectiveness can be audited after the fact.
package store
