// Command ratbagd is the daemon described by this repository: it owns
// every raw-HID gaming-mouse node, brokers configuration to session
// clients over the bus, and is the only process speaking vendor wire
// protocols.
//
// kong.Parse loads multi-format configuration (priority: explicit
// --config, then working directory, then the user config home, then
// /etc) before running the single long-running Daemon command.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/ratbagd/ratbagd/internal/busif"
	"github.com/ratbagd/ratbagd/internal/config"
	"github.com/ratbagd/ratbagd/internal/configpaths"
	"github.com/ratbagd/ratbagd/internal/log"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	kctx := kong.Parse(&cli,
		kong.Name("ratbagd"),
		kong.Description("Session-independent daemon for configuring gaming mice."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		// kong's own parse-error path exits 1; remap it to 22 for unknown
		// arguments, leaving --help/--version's exit 0 alone.
		kong.Exit(func(code int) {
			if code != 0 {
				code = 22
			}
			os.Exit(code)
		}),
		// Flags and environment variables override values loaded from
		// a settings file, in priority order: JSON, then YAML, then TOML.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	verbosity := string(cli.Verbose)
	if cli.Quiet {
		verbosity = "quiet"
	}
	logger := log.SetupLogger(verbosity)
	kctx.Bind(logger)

	// Run errors are reported with exit 1 directly rather than through
	// kctx.FatalIfErrorf, since that would route through the same Exit
	// hook used above for parse errors and remap them to 22 too.
	if err := kctx.Run(); err != nil {
		if busif.IsNameInUse(err) {
			fmt.Fprintln(os.Stderr, "ratbagd: another instance is already running")
		} else {
			fmt.Fprintln(os.Stderr, "ratbagd:", err)
		}
		os.Exit(1)
	}
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
	if v := os.Getenv("RATBAGD_CONFIG"); v != "" {
		return v
	}
	return ""
}
