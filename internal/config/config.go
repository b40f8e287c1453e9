// Package config declares the command line surface. Flags, GIOPGEN_*
// environment variables and config files all resolve into CLI.
package config

import "github.com/Alia5/giopgen/internal/cmd"

// Log configures the process loggers.
type Log struct {
	Level     string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"GIOPGEN_LOG_LEVEL"`
	File      string `help:"Write logs to this file instead of the console" env:"GIOPGEN_LOG_FILE"`
	DeclsFile string `help:"Write the scratch declarations of every generated routine to this file" env:"GIOPGEN_LOG_DECLS_FILE"`
}

// CLI is the root command.
type CLI struct {
	ConfigFile string `name:"config" help:"Path to a JSON, YAML or TOML config file" env:"GIOPGEN_CONFIG" type:"path"`
	Log        Log    `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" help:"Generate a GIOP dissector from a typed IDL tree"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Version  cmd.Version       `cmd:"" help:"Print the generator version"`
}
