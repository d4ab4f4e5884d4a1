package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindExecutionFlagsRegistersDryRun(testInstance *testing.T) {
	command := &cobra.Command{Use: "root"}
	BindExecutionFlags(command, ExecutionDefaults{})

	dryRunFlag := command.PersistentFlags().Lookup(DryRunFlagName)
	require.NotNil(testInstance, dryRunFlag)
	require.Equal(testInstance, "true", dryRunFlag.NoOptDefVal)
}

func TestResolveExecutionFlags(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		expectedDryRun bool
		expectedSet    bool
	}{
		{name: "default", arguments: []string{}},
		{name: "bare_flag", arguments: []string{"--dry-run"}, expectedDryRun: true, expectedSet: true},
		{name: "explicit_no", arguments: []string{"--dry-run=no"}, expectedSet: true},
		{name: "explicit_yes", arguments: []string{"--dry-run=yes"}, expectedDryRun: true, expectedSet: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootCommand := &cobra.Command{Use: "root", RunE: func(*cobra.Command, []string) error { return nil }}
			childCommand := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }}
			rootCommand.AddCommand(childCommand)
			BindExecutionFlags(rootCommand, ExecutionDefaults{})

			rootCommand.SetArgs(append([]string{"child"}, testCase.arguments...))
			require.NoError(testInstance, rootCommand.Execute())

			executionFlags, available := ResolveExecutionFlags(childCommand)
			require.True(testInstance, available)
			require.Equal(testInstance, testCase.expectedDryRun, executionFlags.DryRun)
			require.Equal(testInstance, testCase.expectedSet, executionFlags.DryRunSet)
		})
	}
}

func TestResolveExecutionFlagsWithoutBinding(testInstance *testing.T) {
	command := &cobra.Command{Use: "root"}
	_, available := ResolveExecutionFlags(command)
	require.False(testInstance, available)
}
