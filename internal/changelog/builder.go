package changelog

import (
	"fmt"
	"strings"

	"github.com/deploykit/deploytag/internal/conventional"
)

const (
	featureTypeKeyConstant         = "feat"
	fixTypeKeyConstant             = "fix"
	performanceTypeKeyConstant     = "perf"
	choreTypeKeyConstant           = "chore"
	breakingChangesKeyConstant     = "BREAKING CHANGES"
	featureDisplayNameConstant     = "Features"
	fixDisplayNameConstant         = "Bug Fixes"
	performanceDisplayNameConstant = "Performance Improvements"
	choreDisplayNameConstant       = "Improvements"
	entryTemplateConstant          = "%s (%s)"
	bulletTemplateConstant         = "  - %s"
	groupLabelTemplateConstant     = "%s:"
	headerTemplateConstant         = "Changes since %s (%s ago):"
	emptyTemplateConstant          = "no parseable changes since %s (%s ago)"
	lineSeparatorConstant          = "\n"
)

var typeDisplayNameMapping = map[string]string{
	featureTypeKeyConstant:     featureDisplayNameConstant,
	fixTypeKeyConstant:         fixDisplayNameConstant,
	performanceTypeKeyConstant: performanceDisplayNameConstant,
	choreTypeKeyConstant:       choreDisplayNameConstant,
}

// Groups accumulates formatted changelog entries keyed by change type.
//
// The feat and fix buckets always exist and render first; remaining buckets,
// including the synthetic BREAKING CHANGES bucket, follow in first-seen order.
type Groups struct {
	bucketOrder   []string
	bucketEntries map[string][]string
}

// NewGroups constructs an empty grouping with the fixed leading buckets.
func NewGroups() *Groups {
	return &Groups{
		bucketOrder: []string{featureTypeKeyConstant, fixTypeKeyConstant},
		bucketEntries: map[string][]string{
			featureTypeKeyConstant: {},
			fixTypeKeyConstant:     {},
		},
	}
}

// Add appends one classified commit to the grouping.
func (groups *Groups) Add(record conventional.ParsedCommit) {
	entry := fmt.Sprintf(entryTemplateConstant, record.Description, record.AuthorEmail)
	groups.appendEntry(record.Type, entry)

	for _, breakingChange := range record.BreakingChanges {
		groups.appendEntry(breakingChangesKeyConstant, fmt.Sprintf(entryTemplateConstant, breakingChange, record.AuthorEmail))
	}
}

// Empty reports whether no entries were collected in any bucket.
func (groups *Groups) Empty() bool {
	for _, entries := range groups.bucketEntries {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

func (groups *Groups) appendEntry(bucketKey string, entry string) {
	if _, bucketExists := groups.bucketEntries[bucketKey]; !bucketExists {
		groups.bucketOrder = append(groups.bucketOrder, bucketKey)
		groups.bucketEntries[bucketKey] = []string{}
	}
	groups.bucketEntries[bucketKey] = append(groups.bucketEntries[bucketKey], entry)
}

// Render produces the changelog body for the collected groups.
//
// An empty grouping renders the single no-parseable-changes line; otherwise a
// header line precedes one labeled section per non-empty bucket, each entry as
// an indented bullet, sections separated by blank lines.
func (groups *Groups) Render(previousTagName string, elapsed string) string {
	if groups.Empty() {
		return fmt.Sprintf(emptyTemplateConstant, previousTagName, elapsed)
	}

	renderedLines := []string{fmt.Sprintf(headerTemplateConstant, previousTagName, elapsed)}
	for _, bucketKey := range groups.bucketOrder {
		entries := groups.bucketEntries[bucketKey]
		if len(entries) == 0 {
			continue
		}
		renderedLines = append(renderedLines, "", fmt.Sprintf(groupLabelTemplateConstant, displayName(bucketKey)))
		for _, entry := range entries {
			renderedLines = append(renderedLines, fmt.Sprintf(bulletTemplateConstant, entry))
		}
	}

	return strings.Join(renderedLines, lineSeparatorConstant)
}

// Build aggregates classified commits and renders the changelog body in one pass.
func Build(records []conventional.ParsedCommit, previousTagName string, elapsed string) string {
	groups := NewGroups()
	for _, record := range records {
		groups.Add(record)
	}
	return groups.Render(previousTagName, elapsed)
}

func displayName(bucketKey string) string {
	if bucketKey == breakingChangesKeyConstant {
		return breakingChangesKeyConstant
	}
	if mappedName, nameKnown := typeDisplayNameMapping[bucketKey]; nameKnown {
		return mappedName
	}
	return bucketKey
}
