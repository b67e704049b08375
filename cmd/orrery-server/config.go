package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr           string
	ScenarioFile   string
	RecordDB       string
	TickIntervalMS int
	LogLevel       string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment variables.
// Uses a resolver pattern to make it easy to add new configuration options.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	// Define all configuration resolvers
	// To add a new option, just add a new resolver here
	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "ORRERY_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "scenario-file",
			envVarName:  "ORRERY_SCENARIO_FILE",
			defaultVal:  "",
			description: "optional path to a scenario file (.json or .toml) to load at startup; defaults to the built-in solar system",
			setter:      func(c *ServerConfig, v string) { c.ScenarioFile = v },
		},
		{
			flagName:    "record-db",
			envVarName:  "ORRERY_RECORD_DB",
			defaultVal:  "",
			description: "optional path to a sqlite database for per-tick trajectory recording; empty disables recording",
			setter:      func(c *ServerConfig, v string) { c.RecordDB = v },
		},
		{
			flagName:    "tick-interval-ms",
			envVarName:  "ORRERY_TICK_INTERVAL_MS",
			defaultVal:  "16",
			description: "default tick interval in milliseconds when starting the simulation",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.TickIntervalMS = val
				} else {
					log.Printf("Invalid value for tick-interval-ms: %s, using default 16", v)
					c.TickIntervalMS = 16
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "ORRERY_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	// Parse flags once
	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}
