package config

import (
	"os"
	"strings"
)

// Server captures process level configuration for the dev server and CLI.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string
}

// DefaultAddr matches the port the dev server has always listened on.
const DefaultAddr = ":3000"

// FromEnv builds a Server config from environment variables so main stays lean.
// CLI flags override these values when set.
func FromEnv() Server {
	addr := os.Getenv("BUBBLEPOINT_ADDR")
	if addr == "" {
		addr = DefaultAddr
	}
	level := strings.ToLower(os.Getenv("BUBBLEPOINT_LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.ToLower(os.Getenv("BUBBLEPOINT_LOG_FORMAT"))
	if format == "" {
		format = "text"
	}

	return Server{
		Addr:      addr,
		LogLevel:  level,
		LogFormat: format,
	}
}
