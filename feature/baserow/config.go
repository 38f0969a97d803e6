package baserow

// Config holds configuration for the Baserow roster source.
type Config struct {
	// URL is the Baserow API base URL.
	URL string `mapstructure:"url" default:"https://api.baserow.io"`
	// APIKey is the database token.
	APIKey string `mapstructure:"api_key" default:""`
	// TableID is the roster table.
	TableID int `mapstructure:"table_id" default:"0"`
	// PageSize is the number of rows requested per page (max 200).
	PageSize int `mapstructure:"page_size" default:"200"`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
