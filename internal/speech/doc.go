// Package speech defines the acceptance speech domain model: the
// (year, category) key, the cleaned winner record, the canonical award
// categories, and the read-only catalog over the ingested row store.
package speech
