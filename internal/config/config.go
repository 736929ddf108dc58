// Package config defines ratbagd's top-level kong command tree: a
// root struct composing the daemon command with the settings-file
// and service-install subcommands from the sibling internal/cmd
// package.
package config

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/ratbagd/ratbagd/internal/cmd"
)

// VerboseLevel is the --verbose flag's value. Giving the flag bare
// ("--verbose") selects "raw"; "--verbose=debug" and "--verbose=raw"
// select explicitly; omitting it entirely leaves the zero value "".
//
// IsBool tells kong to parse this flag the same way it parses a bool
// flag: a following command-line token is never consumed as the
// value unless joined with "=", so "ratbagd --verbose" does not try
// to eat the next argument.
type VerboseLevel string

func (VerboseLevel) IsBool() bool { return true }

func (v *VerboseLevel) Decode(ctx *kong.DecodeContext) error {
	t := ctx.Scan.Pop()
	var raw string
	switch val := t.Value.(type) {
	case bool:
		if val {
			*v = "raw"
		} else {
			*v = ""
		}
		return nil
	case string:
		raw = val
	default:
		raw = fmt.Sprintf("%v", val)
	}
	switch raw {
	case "true":
		*v = "raw"
	case "false", "":
		*v = ""
	case "debug", "raw":
		*v = VerboseLevel(raw)
	default:
		return fmt.Errorf("--verbose: expected \"debug\", \"raw\", or no value, got %q", raw)
	}
	return nil
}

// CLI is the kong root command.
type CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit." name:"version"`

	Quiet   bool         `help:"Lower log verbosity to warnings and above." short:"q"`
	Verbose VerboseLevel `help:"Raise log verbosity: bare for raw per-report hex dumps, =debug for less." default:""`
	Config  string       `help:"Path to a settings file (overrides the discovery order)." name:"config"`

	Daemon    cmd.Daemon           `cmd:"" default:"1" help:"Run the ratbagd daemon (default command)."`
	ConfigCmd cmd.ConfigCommand    `cmd:"" name:"config" help:"Settings-file tooling."`
	Install   cmd.InstallCommand   `cmd:"" name:"install" help:"Install ratbagd as a systemd service."`
	Uninstall cmd.UninstallCommand `cmd:"" name:"uninstall" help:"Remove the ratbagd systemd service."`
}
