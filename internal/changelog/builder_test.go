package changelog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deploykit/deploytag/internal/changelog"
	"github.com/deploykit/deploytag/internal/conventional"
)

func TestBuildGroupsEntriesByType(testInstance *testing.T) {
	records := []conventional.ParsedCommit{
		{Type: "feat", Description: "add widget", AuthorEmail: "a@x.com"},
		{Type: "fix", Description: "handle nil input", AuthorEmail: "b@x.com"},
		{Type: "docs", Description: "describe widget", AuthorEmail: "c@x.com"},
		{Type: "feat", Description: "add gadget", AuthorEmail: "a@x.com"},
	}

	rendered := changelog.Build(records, "v2.previous", "2 days, 0:00:00")
	expected := "Changes since v2.previous (2 days, 0:00:00 ago):\n" +
		"\n" +
		"Features:\n" +
		"  - add widget (a@x.com)\n" +
		"  - add gadget (a@x.com)\n" +
		"\n" +
		"Bug Fixes:\n" +
		"  - handle nil input (b@x.com)\n" +
		"\n" +
		"docs:\n" +
		"  - describe widget (c@x.com)"
	require.Equal(testInstance, expected, rendered)
}

func TestBuildRendersBreakingChangesBucket(testInstance *testing.T) {
	records := []conventional.ParsedCommit{
		{Type: "chore", Description: "tighten defaults", AuthorEmail: "a@x.com", BreakingChanges: []string{"defaults changed"}},
		{Type: "perf", Description: "faster walk", AuthorEmail: "b@x.com"},
	}

	rendered := changelog.Build(records, "v2.previous", "0:10:00")
	require.Contains(testInstance, rendered, "Improvements:\n  - tighten defaults (a@x.com)")
	require.Contains(testInstance, rendered, "Performance Improvements:\n  - faster walk (b@x.com)")
	require.Contains(testInstance, rendered, "BREAKING CHANGES:\n  - defaults changed (a@x.com)")
}

func TestBuildWithoutRecordsRendersNoChangesLine(testInstance *testing.T) {
	rendered := changelog.Build(nil, "v2.previous", "2 days, 0:00:00")
	require.Equal(testInstance, "no parseable changes since v2.previous (2 days, 0:00:00 ago)", rendered)
}

func TestFormatElapsed(testInstance *testing.T) {
	testCases := []struct {
		name     string
		elapsed  time.Duration
		expected string
	}{
		{name: "two_days", elapsed: 48 * time.Hour, expected: "2 days, 0:00:00"},
		{name: "single_day", elapsed: 24*time.Hour + 30*time.Second, expected: "1 day, 0:00:30"},
		{name: "under_a_day", elapsed: 3*time.Hour + 4*time.Minute + 5*time.Second, expected: "3:04:05"},
		{name: "minutes_only", elapsed: 5 * time.Minute, expected: "0:05:00"},
		{name: "negative_clamps_to_zero", elapsed: -time.Hour, expected: "0:00:00"},
	}

	referenceTime := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, changelog.FormatElapsed(referenceTime.Add(-testCase.elapsed), referenceTime))
		})
	}
}
