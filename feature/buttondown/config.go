package buttondown

// Config holds configuration for the Buttondown mailing list.
type Config struct {
	// URL is the Buttondown API base URL.
	URL string `mapstructure:"url" default:"https://api.buttondown.com"`
	// APIKey is the API token.
	APIKey string `mapstructure:"api_key" default:""`
	// SkipCodes are API error codes reported as warnings instead of aborting a run.
	SkipCodes []string `mapstructure:"skip_codes" default:"email_blocked,email_invalid"`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
