package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"scjingle/host/cli"
	"scjingle/host/configpaths"
	hostlog "scjingle/host/log"
)

func main() {
	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("scjingle"),
		kong.Description("Steam Controller haptic jingle tool"),
		kong.UsageOnError(),
		// Flags and environment override configuration files.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closers, err := hostlog.SetupLogger(c.Log.Level, c.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	rawLogger := cli.OpenRawLogger(c.Log, logger, &closers)

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*hostlog.RawLogger)(nil))

	err = ctx.Run()
	closeAll(closers)
	ctx.FatalIfErrorf(err)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
