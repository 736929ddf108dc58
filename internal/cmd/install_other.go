//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

// InstallCommand is a no-op stub outside Linux: there is no reference
// service-manager integration for other platforms in scope here.
type InstallCommand struct{}

func (c *InstallCommand) Run(logger *slog.Logger) error {
	return errors.New("service installation is only supported on Linux")
}

// UninstallCommand mirrors InstallCommand.
type UninstallCommand struct{}

func (c *UninstallCommand) Run(logger *slog.Logger) error {
	return errors.New("service installation is only supported on Linux")
}
