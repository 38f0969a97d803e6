// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL or SQLite connections from the application's
// configuration. The SQL roster source reads its table through this package.
//
// # Connect
//
// Connect selects the dialector from Config.Driver, applies the connection pool
// settings and pings the database within the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table using SHOW COLUMNS on MySQL and
// PRAGMA table_info on SQLite. MissingColumns builds on it to verify that the
// columns a roster mapping refers to exist before any row is read.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "members", []string{"id", "email"})
package database
