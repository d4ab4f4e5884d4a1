package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue  = "true"
	toggleFalseCanonicalValue = "false"
	toggleParseErrorTemplate  = "invalid toggle value %q"
	toggleEnabledPlaceholder  = "<YES|no>"
	toggleDisabledPlaceholder = "<yes|NO>"
	longFlagPrefixConstant    = "--"
	argumentTerminatorLiteral = "--"
	flagValueSeparatorLiteral = "="
)

var (
	toggleTrueLiterals  = map[string]struct{}{toggleTrueCanonicalValue: {}, "yes": {}, "on": {}, "1": {}}
	toggleFalseLiterals = map[string]struct{}{toggleFalseCanonicalValue: {}, "no": {}, "off": {}, "0": {}}

	toggleFlagRegistryMutex sync.RWMutex
	toggleFlagNames         = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag, such as dry-run, that accepts
// yes/no style values and defaults to true when supplied without a value.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleValue(defaultValue, target), name, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	toggleFlagRegistryMutex.Lock()
	toggleFlagNames[name] = struct{}{}
	toggleFlagRegistryMutex.Unlock()
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholder
	if defaultValue {
		placeholder = toggleEnabledPlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}

// NormalizeToggleArguments rewrites registered toggle flags given as
// "--flag value" into "--flag=value" so pflag does not treat the value as a
// positional argument. Arguments after a bare "--" pass through untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == argumentTerminatorLiteral {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if rewritten, consumed := rewriteToggleArgument(current, arguments, index); consumed > 0 {
			normalized = append(normalized, rewritten)
			index += consumed
			continue
		}

		normalized = append(normalized, current)
		index++
	}

	return normalized
}

func rewriteToggleArgument(current string, arguments []string, index int) (string, int) {
	if !strings.HasPrefix(current, longFlagPrefixConstant) {
		return "", 0
	}
	flagName := strings.TrimPrefix(current, longFlagPrefixConstant)
	if separatorIndex := strings.Index(flagName, flagValueSeparatorLiteral); separatorIndex >= 0 {
		flagName = flagName[:separatorIndex]
	}
	if len(flagName) == 0 || !isRegisteredToggle(flagName) {
		return "", 0
	}
	if strings.Contains(current, flagValueSeparatorLiteral) {
		return current, 1
	}
	if index+1 >= len(arguments) || strings.HasPrefix(arguments[index+1], "-") {
		return current, 1
	}
	return current + flagValueSeparatorLiteral + arguments[index+1], 2
}

func isRegisteredToggle(name string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagNames[name]
	return exists
}

type toggleValue struct {
	currentValue bool
	target       *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{currentValue: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleLiteral(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

// Type reports "bool" so pflag.FlagSet.GetBool accepts the flag.
func (value *toggleValue) Type() string {
	return "bool"
}

func parseToggleLiteral(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		normalizedValue = toggleTrueCanonicalValue
	}

	if _, isTrue := toggleTrueLiterals[normalizedValue]; isTrue {
		return true, nil
	}
	if _, isFalse := toggleFalseLiterals[normalizedValue]; isFalse {
		return false, nil
	}
	return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
}
