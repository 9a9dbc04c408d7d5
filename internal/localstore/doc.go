// Package localstore implements the offline-first record cache backing the
// dashboard: named collections of JSON records kept in a durable key/value
// slot per collection, with sync metadata on every record and a
// reconciliation path that folds authoritative remote rows into the local
// view without losing local-only records.
package localstore
