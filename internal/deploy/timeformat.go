package deploy

import (
	"errors"
	"fmt"
	"strings"
)

const (
	strftimeDirectiveMarkerConstant       = '%'
	unknownDirectiveErrorTemplateConstant = "unsupported timestamp directive: %%%c"
	danglingDirectiveErrorMessageConstant = "timestamp pattern ends with a bare %"
)

// ErrDanglingDirective indicates a pattern terminated by an unfinished directive.
var ErrDanglingDirective = errors.New(danglingDirectiveErrorMessageConstant)

var strftimeDirectiveMapping = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
}

// ConvertTimestampLayout translates a strftime-style pattern into a Go time
// layout. Unsupported directives fail loudly so a misconfigured pattern never
// silently produces a malformed tag name.
func ConvertTimestampLayout(pattern string) (string, error) {
	var layoutBuilder strings.Builder

	for characterIndex := 0; characterIndex < len(pattern); characterIndex++ {
		if pattern[characterIndex] != strftimeDirectiveMarkerConstant {
			layoutBuilder.WriteByte(pattern[characterIndex])
			continue
		}

		characterIndex++
		if characterIndex >= len(pattern) {
			return "", ErrDanglingDirective
		}

		directive := pattern[characterIndex]
		if directive == strftimeDirectiveMarkerConstant {
			layoutBuilder.WriteByte(strftimeDirectiveMarkerConstant)
			continue
		}

		layoutFragment, directiveKnown := strftimeDirectiveMapping[directive]
		if !directiveKnown {
			return "", fmt.Errorf(unknownDirectiveErrorTemplateConstant, directive)
		}
		layoutBuilder.WriteString(layoutFragment)
	}

	return layoutBuilder.String(), nil
}
