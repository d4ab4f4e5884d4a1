package cli

import _ "embed"

// The baked-in defaults ship with the binary so deploytag runs without any
// configuration file: v2. tag prefix, HEAD target, %Y%m%dT%H%M%S timestamps,
// and a 50-commit changelog bound.
//
//go:embed default_config.yaml
var defaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default
// configuration together with its format identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	duplicatedContent := make([]byte, len(defaultConfigurationContent))
	copy(duplicatedContent, defaultConfigurationContent)
	return duplicatedContent, configurationTypeConstant
}
