package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testToggleFlagNameConstant = "skip-tag"

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "default_false", arguments: []string{}},
		{name: "implicit_true", arguments: []string{"--skip-tag"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_yes", arguments: []string{"--skip-tag", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_on", arguments: []string{"--skip-tag", "on"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_true_uppercase", arguments: []string{"--skip-tag", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_no", arguments: []string{"--skip-tag", "no"}, expectedChanged: true},
		{name: "explicit_off", arguments: []string{"--skip-tag", "off"}, expectedChanged: true},
		{name: "explicit_false_uppercase", arguments: []string{"--skip-tag", "FALSE"}, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{}

			var toggleTarget bool
			AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, false, "Skip tag creation")

			parseError := command.ParseFlags(NormalizeToggleArguments(testCase.arguments))
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValue, toggleTarget)

			flag := command.Flags().Lookup(testToggleFlagNameConstant)
			require.NotNil(testInstance, flag)
			require.Equal(testInstance, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}

	var toggleTarget bool
	AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, false, "Skip tag creation")

	parseError := command.ParseFlags(NormalizeToggleArguments([]string{"--skip-tag", "maybe"}))
	require.Error(testInstance, parseError)
	require.False(testInstance, toggleTarget)
}

func TestAddToggleFlagSupportsGetBool(testInstance *testing.T) {
	command := &cobra.Command{}
	AddToggleFlag(command.Flags(), nil, testToggleFlagNameConstant, false, "Skip tag creation")

	require.NoError(testInstance, command.ParseFlags([]string{"--skip-tag=yes"}))

	resolvedValue, resolveError := command.Flags().GetBool(testToggleFlagNameConstant)
	require.NoError(testInstance, resolveError)
	require.True(testInstance, resolvedValue)
}

func TestNormalizeToggleArgumentsLeavesOtherArgumentsAlone(testInstance *testing.T) {
	command := &cobra.Command{}
	AddToggleFlag(command.Flags(), nil, testToggleFlagNameConstant, false, "Skip tag creation")

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "toggle_with_separate_value",
			arguments: []string{"tag", "--skip-tag", "no", "--deploy-id", "7"},
			expected:  []string{"tag", "--skip-tag=no", "--deploy-id", "7"},
		},
		{
			name:      "toggle_already_assigned",
			arguments: []string{"--skip-tag=yes"},
			expected:  []string{"--skip-tag=yes"},
		},
		{
			name:      "non_toggle_flags_untouched",
			arguments: []string{"--tag-prefix", "prod."},
			expected:  []string{"--tag-prefix", "prod."},
		},
		{
			name:      "arguments_after_terminator_untouched",
			arguments: []string{"--", "--skip-tag", "no"},
			expected:  []string{"--", "--skip-tag", "no"},
		},
		{
			name:      "trailing_toggle_without_value",
			arguments: []string{"--skip-tag"},
			expected:  []string{"--skip-tag"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, NormalizeToggleArguments(testCase.arguments))
		})
	}
}
