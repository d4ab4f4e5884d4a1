// Package changelog selects the previous deployment tag and renders grouped
// release notes from classified commits.
package changelog

import (
	"strings"

	"github.com/deploykit/deploytag/internal/gitrepo"
)

// SelectLatestTag picks the candidate with the most recent date among tags
// matching the provided prefix.
//
// The boolean result reports whether any candidate matched. Candidates with
// identical dates keep the earliest-listed one.
func SelectLatestTag(candidates []gitrepo.TagCandidate, tagPrefix string) (gitrepo.TagCandidate, bool) {
	selectedCandidate := gitrepo.TagCandidate{}
	candidateFound := false

	for _, candidate := range candidates {
		if !strings.HasPrefix(candidate.Name, tagPrefix) {
			continue
		}
		if !candidateFound || candidate.TargetDate.After(selectedCandidate.TargetDate) {
			selectedCandidate = candidate
			candidateFound = true
		}
	}

	return selectedCandidate, candidateFound
}
