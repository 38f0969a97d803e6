// Package baserow loads the roster from a Baserow table.
//
// Rows are listed through the REST API with user field names, page by page,
// and handed to the roster package as raw cells keyed by column name.
package baserow
