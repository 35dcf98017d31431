package models

import "time"

// Resolver backend names
const (
	ResolverYouTube = "youtube"
	ResolverYtdlp   = "ytdlp"
)

// Config represents the gateway configuration
type Config struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	Resolver        string   `json:"resolver"`
	YtdlpPath       string   `json:"ytdlpPath"`
	UpstreamTimeout Duration `json:"upstreamTimeout"`
	AllowedOrigins  []string `json:"allowedOrigins"`
	LogLevel        string   `json:"logLevel"`
	LogDevelopment  bool     `json:"logDevelopment"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            5000,
		Resolver:        ResolverYouTube,
		YtdlpPath:       "yt-dlp",
		UpstreamTimeout: Duration(30 * time.Second),
		AllowedOrigins:  []string{"*"},
		LogLevel:        "info",
		LogDevelopment:  false,
	}
}
