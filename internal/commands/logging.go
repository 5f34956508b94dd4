package commands

import (
	"strings"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const commandModuleRoot = "directory.commands"

// CommandLogger returns a module-scoped logger for command handlers with the
// component and command_module fields set.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
