// Package roster turns raw roster rows into reconcile source records.
//
// Rows come from a Source (Baserow or a SQL table) as column name to cell value
// maps. Columns selects the email column, the tag columns (each value becomes a
// "<column>: <value>" tag) and the metadata columns (copied under the column name).
// The email cell may list several addresses separated by ";", each becoming its
// own record with a disambiguated identifier.
//
// # Usage
//
//	records, err := roster.Load(ctx, source, cfg.Source.Columns())
package roster
