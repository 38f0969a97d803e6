package membership

// Config holds configuration for the membership feature.
type Config struct {
	// ReportPrefix is the object prefix run reports are archived under.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// ReportRetention is the number of archived reports kept. Zero keeps all.
	ReportRetention int `mapstructure:"report_retention" default:"0"`
}
