// Package conventional classifies commit messages that follow the
// conventional-commit summary convention.
package conventional

import (
	"regexp"
	"strings"
)

const (
	summaryLineSeparatorConstant = "\n"
	summaryPatternConstant       = `^([a-z]+)(?:\(([^)]*)\))?: (.+)$`
	breakingPatternConstant      = `(?m)^BREAKING CHANGES?: (.*)$`
)

var (
	summaryExpression  = regexp.MustCompile(summaryPatternConstant)
	breakingExpression = regexp.MustCompile(breakingPatternConstant)
)

// ParsedCommit is the structured record produced from one classified commit.
type ParsedCommit struct {
	Type            string
	Scope           string
	Description     string
	AuthorEmail     string
	BreakingChanges []string
}

// Classify parses a raw commit message into a ParsedCommit.
//
// The boolean result reports whether the summary line matched the
// conventional pattern; messages that do not match produce no record and are
// not an error. Breaking-change markers are collected from every line of the
// message in order of appearance.
func Classify(message string, authorEmail string) (ParsedCommit, bool) {
	summaryLine, _, _ := strings.Cut(message, summaryLineSeparatorConstant)
	summaryMatch := summaryExpression.FindStringSubmatch(summaryLine)
	if summaryMatch == nil {
		return ParsedCommit{}, false
	}

	parsedCommit := ParsedCommit{
		Type:        summaryMatch[1],
		Scope:       summaryMatch[2],
		Description: summaryMatch[3],
		AuthorEmail: authorEmail,
	}

	for _, breakingMatch := range breakingExpression.FindAllStringSubmatch(message, -1) {
		parsedCommit.BreakingChanges = append(parsedCommit.BreakingChanges, breakingMatch[1])
	}

	return parsedCommit, true
}
