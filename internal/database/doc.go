// Package database persists the recordings index in SQLite.
//
// The index is rebuilt wholesale by the indexer and read by the tree and
// stats endpoints; WAL mode keeps readers unblocked during rebuilds.
package database
