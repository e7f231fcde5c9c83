// Package ingest builds the row store from the two raw speech sources:
// the Kaggle award-speech dump and the CSV scraped from the Academy
// database. Both are normalized to canonical categories and cleaned, the
// Academy version wins on (year, category) duplicates, and the merged
// rows are written as the row store CSV the labeling pipeline reads.
package ingest
