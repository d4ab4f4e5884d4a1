// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Render the release notes without creating the tag"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun bool
}

// ExecutionFlags carries resolved shared execution flag values.
type ExecutionFlags struct {
	DryRun    bool
	DryRunSet bool
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(DryRunFlagName) == nil {
		AddToggleFlag(persistentFlagSet, nil, DryRunFlagName, defaults.DryRun, DryRunFlagUsage)
	}
}

// ResolveExecutionFlags reads the shared execution flags from the command or its ancestors.
func ResolveExecutionFlags(command *cobra.Command) (ExecutionFlags, bool) {
	if command == nil {
		return ExecutionFlags{}, false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		dryRunFlag := flagSet.Lookup(DryRunFlagName)
		if dryRunFlag == nil {
			continue
		}
		dryRunValue, parseError := flagSet.GetBool(DryRunFlagName)
		if parseError != nil {
			continue
		}
		return ExecutionFlags{DryRun: dryRunValue, DryRunSet: dryRunFlag.Changed}, true
	}

	return ExecutionFlags{}, false
}
