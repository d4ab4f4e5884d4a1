package changelog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deploykit/deploytag/internal/changelog"
	"github.com/deploykit/deploytag/internal/gitrepo"
)

const testTagPrefixConstant = "v2."

func TestSelectLatestTagPicksMostRecentCandidate(testInstance *testing.T) {
	baseTime := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	candidates := []gitrepo.TagCandidate{
		{Name: "v2.A", TargetDate: baseTime},
		{Name: "v2.C", TargetDate: baseTime.Add(48 * time.Hour)},
		{Name: "v2.B", TargetDate: baseTime.Add(24 * time.Hour)},
	}

	selected, found := changelog.SelectLatestTag(candidates, testTagPrefixConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, "v2.C", selected.Name)
}

func TestSelectLatestTagIgnoresOtherPrefixes(testInstance *testing.T) {
	baseTime := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	candidates := []gitrepo.TagCandidate{
		{Name: "v1.9", TargetDate: baseTime.Add(72 * time.Hour)},
		{Name: "v2.old", TargetDate: baseTime},
	}

	selected, found := changelog.SelectLatestTag(candidates, testTagPrefixConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, "v2.old", selected.Name)
}

func TestSelectLatestTagReportsNoMatch(testInstance *testing.T) {
	candidates := []gitrepo.TagCandidate{
		{Name: "release-1", TargetDate: time.Now()},
	}

	_, found := changelog.SelectLatestTag(candidates, testTagPrefixConstant)
	require.False(testInstance, found)
}

func TestSelectLatestTagKeepsEarliestListedOnTies(testInstance *testing.T) {
	sharedTime := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	candidates := []gitrepo.TagCandidate{
		{Name: "v2.first", TargetDate: sharedTime},
		{Name: "v2.second", TargetDate: sharedTime},
	}

	selected, found := changelog.SelectLatestTag(candidates, testTagPrefixConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, "v2.first", selected.Name)
}
