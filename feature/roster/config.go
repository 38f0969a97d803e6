package roster

// Config maps roster columns onto subscriber fields.
type Config struct {
	// Provider selects the roster backend (baserow, sql).
	Provider string `mapstructure:"provider" default:"baserow"`
	// EmailColumn holds one or more addresses separated by ";".
	EmailColumn string `mapstructure:"email_column" default:"Email"`
	// TagColumns are turned into "<column>: <value>" tags.
	TagColumns []string `mapstructure:"tag_columns" default:""`
	// MetadataColumns are copied into metadata under the column name.
	MetadataColumns []string `mapstructure:"metadata_columns" default:""`
	// ActiveColumn, when set, excludes rows whose cell is not truthy.
	ActiveColumn string `mapstructure:"active_column" default:""`
}

// Columns returns the column mapping.
func (c Config) Columns() Columns {
	return Columns{
		Email:    c.EmailColumn,
		Tags:     c.TagColumns,
		Metadata: c.MetadataColumns,
		Active:   c.ActiveColumn,
	}
}
