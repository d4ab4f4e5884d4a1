package deploytag

import (
	"strings"

	"github.com/deploykit/deploytag/internal/deploy"
)

const (
	workingDirectoryConfigKeyConstant = "working_directory"
	repositoryConfigKeyConstant       = "repository"
	tagPrefixConfigKeyConstant        = "tag_prefix"
	targetReferenceConfigKeyConstant  = "target_reference"
	timestampFormatConfigKeyConstant  = "timestamp_format"
	maxCommitsConfigKeyConstant       = "max_commits"
	apiTokenConfigKeyConstant         = "api_token"
	outputPathConfigKeyConstant       = "output_path"
	configurationKeySeparator         = "."

	defaultTargetReferenceConstant = "HEAD"
)

// CommandConfiguration stores configurable values for the tag command.
type CommandConfiguration struct {
	WorkingDirectory string `mapstructure:"working_directory"`
	Repository       string `mapstructure:"repository"`
	TagPrefix        string `mapstructure:"tag_prefix"`
	TargetReference  string `mapstructure:"target_reference"`
	TimestampFormat  string `mapstructure:"timestamp_format"`
	MaxCommits       int    `mapstructure:"max_commits"`
	APIToken         string `mapstructure:"api_token"`
	OutputPath       string `mapstructure:"output_path"`
}

// DefaultCommandConfiguration returns the baseline tag command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		TagPrefix:       deploy.DefaultTagPrefix,
		TargetReference: defaultTargetReferenceConstant,
		TimestampFormat: deploy.DefaultTimestampFormat,
		MaxCommits:      deploy.DefaultMaxCommits,
	}
}

// Sanitize trims configured values and substitutes defaults for absent ones.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()

	sanitized := configuration
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.TagPrefix = strings.TrimSpace(configuration.TagPrefix)
	sanitized.TargetReference = strings.TrimSpace(configuration.TargetReference)
	sanitized.TimestampFormat = strings.TrimSpace(configuration.TimestampFormat)
	sanitized.APIToken = strings.TrimSpace(configuration.APIToken)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)

	if len(sanitized.TagPrefix) == 0 {
		sanitized.TagPrefix = defaults.TagPrefix
	}
	if len(sanitized.TargetReference) == 0 {
		sanitized.TargetReference = defaults.TargetReference
	}
	if len(sanitized.TimestampFormat) == 0 {
		sanitized.TimestampFormat = defaults.TimestampFormat
	}
	if sanitized.MaxCommits <= 0 {
		sanitized.MaxCommits = defaults.MaxCommits
	}

	return sanitized
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the
// provided prefix. Empty-valued keys are registered so environment overrides
// bind even when no configuration file supplies them.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + configurationKeySeparator + workingDirectoryConfigKeyConstant: defaults.WorkingDirectory,
		configurationKeyPrefix + configurationKeySeparator + repositoryConfigKeyConstant:       defaults.Repository,
		configurationKeyPrefix + configurationKeySeparator + tagPrefixConfigKeyConstant:        defaults.TagPrefix,
		configurationKeyPrefix + configurationKeySeparator + targetReferenceConfigKeyConstant:  defaults.TargetReference,
		configurationKeyPrefix + configurationKeySeparator + timestampFormatConfigKeyConstant:  defaults.TimestampFormat,
		configurationKeyPrefix + configurationKeySeparator + maxCommitsConfigKeyConstant:       defaults.MaxCommits,
		configurationKeyPrefix + configurationKeySeparator + apiTokenConfigKeyConstant:         defaults.APIToken,
		configurationKeyPrefix + configurationKeySeparator + outputPathConfigKeyConstant:       defaults.OutputPath,
	}
}
