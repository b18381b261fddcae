// Package repository defines the data access interfaces for the plan
// library.
//
// A plan is a saved network document (nodes, pipes and global settings)
// stored under a unique name. The actual implementation is in the sqlite
// subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores each plan as one JSON document alongside
// indexed summary columns (name, counts, timestamps). It handles:
//
// - Upsert by name, so saving twice under one name replaces the document
// - Lookup by id or by name
// - Listing without decoding documents
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
