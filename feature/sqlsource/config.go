package sqlsource

// Config holds configuration for the SQL roster source.
type Config struct {
	// Table is the roster table.
	Table string `mapstructure:"table" default:"roster"`
	// IDColumn holds the row identifier.
	IDColumn string `mapstructure:"id_column" default:"id"`
}
