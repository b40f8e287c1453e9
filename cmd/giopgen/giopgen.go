package main

import (
	"os"
	"strings"

	"github.com/Alia5/giopgen/internal/cmd"
	"github.com/Alia5/giopgen/internal/config"
	"github.com/Alia5/giopgen/internal/configpaths"
	"github.com/Alia5/giopgen/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {

	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("giopgen"),
		kong.Description("GIOP dissector generator for typed IDL trees"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	artifactOnStdout := ctx.Command() == "generate" && cli.Generate.Output == cmd.Stdout
	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, log.StdConsole(artifactOnStdout))
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var declLogger log.DeclLogger
	if cli.Log.DeclsFile != "" {
		f, err := os.OpenFile(cli.Log.DeclsFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open declarations log file", "file", cli.Log.DeclsFile, "error", err)
			declLogger = log.NewDecl(nil)
		} else {
			declLogger = log.NewDecl(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" && !artifactOnStdout {
		declLogger = log.NewDecl(os.Stdout)
	} else {
		declLogger = log.NewDecl(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(declLogger, (*log.DeclLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("GIOPGEN_CONFIG"); v != "" {
		return v
	}
	return ""
}
