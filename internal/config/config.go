package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer         string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience       string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL            time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	WSMsgRateLimit    int           `mapstructure:"ws_msg_rate_limit" yaml:"ws_msg_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "chattify.db",
		JWTSecret:         "change-me",
		JWTIssuer:         "chattify",
		JWTAudience:       "chattify-clients",
		JWTTTL:            24 * time.Hour,
		LogLevel:          "info",
		WSMsgRateLimit:    600, // inbound events per connection per minute; 0 disables
	}
}
