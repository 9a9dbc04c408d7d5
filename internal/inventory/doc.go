// Package inventory is the typed read/write surface over the local store:
// one accessor/mutator set per entity (products, categories, suppliers, stock
// transactions, users), plus the stock arithmetic applied when a transaction
// is recorded locally.
package inventory
