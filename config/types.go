package config

// Config represents the complete configuration structure
type Config struct {
	Bitbucket BitbucketConfig `mapstructure:"bitbucket"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BitbucketConfig holds Bitbucket Data Center connection details.
// Server must point at the REST root of the instance, ending in /rest
// (example: https://bitbucket.example.com/bitbucket/rest).
type BitbucketConfig struct {
	Server  string `mapstructure:"server"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"`
}

// DefaultsConfig contains optional defaults applied when the matching
// command-line flag is not given
type DefaultsConfig struct {
	Project  string `mapstructure:"project"`
	Repo     string `mapstructure:"repo"`
	Limit    int    `mapstructure:"limit"`
	MaxItems int    `mapstructure:"max_items"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
