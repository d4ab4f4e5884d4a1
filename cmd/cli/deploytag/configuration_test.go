package deploytag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploykit/deploytag/cmd/cli/deploytag"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    deploytag.CommandConfiguration
		expected deploytag.CommandConfiguration
	}{
		{
			name:     "empty_configuration_uses_defaults",
			input:    deploytag.CommandConfiguration{},
			expected: deploytag.DefaultCommandConfiguration(),
		},
		{
			name: "whitespace_trimmed_and_preserved",
			input: deploytag.CommandConfiguration{
				WorkingDirectory: " /srv/checkout ",
				Repository:       " acme/storefront ",
				TagPrefix:        " prod. ",
				TargetReference:  " main ",
				TimestampFormat:  " %Y ",
				MaxCommits:       10,
				APIToken:         " token ",
				OutputPath:       " report.txt ",
			},
			expected: deploytag.CommandConfiguration{
				WorkingDirectory: "/srv/checkout",
				Repository:       "acme/storefront",
				TagPrefix:        "prod.",
				TargetReference:  "main",
				TimestampFormat:  "%Y",
				MaxCommits:       10,
				APIToken:         "token",
				OutputPath:       "report.txt",
			},
		},
		{
			name:  "non_positive_commit_bound_replaced",
			input: deploytag.CommandConfiguration{MaxCommits: -4},
			expected: deploytag.CommandConfiguration{
				TagPrefix:       deploytag.DefaultCommandConfiguration().TagPrefix,
				TargetReference: deploytag.DefaultCommandConfiguration().TargetReference,
				TimestampFormat: deploytag.DefaultCommandConfiguration().TimestampFormat,
				MaxCommits:      deploytag.DefaultCommandConfiguration().MaxCommits,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.input.Sanitize())
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	values := deploytag.DefaultConfigurationValues("tools.deploytag")

	require.Equal(testInstance, "v2.", values["tools.deploytag.tag_prefix"])
	require.Equal(testInstance, "HEAD", values["tools.deploytag.target_reference"])
	require.Equal(testInstance, "%Y%m%dT%H%M%S", values["tools.deploytag.timestamp_format"])
	require.Equal(testInstance, 50, values["tools.deploytag.max_commits"])
	require.Contains(testInstance, values, "tools.deploytag.working_directory")
	require.Contains(testInstance, values, "tools.deploytag.repository")
}
