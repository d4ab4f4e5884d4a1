package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix = "<"
	choicePlaceholderSuffix = ">"
	choiceSeparatorLiteral  = "|"
)

// FormatChoiceUsage builds the usage string for enumerated flags such as
// log-level and log-format, capitalizing the default inside the placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	displayChoices := make([]string, 0, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}
		if strings.ToLower(trimmedChoice) == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayChoices = append(displayChoices, trimmedChoice)
	}

	placeholder := choicePlaceholderPrefix + strings.Join(displayChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}
