// Package deploytag exposes the Cobra command that tags deployments and
// generates release notes from conventional commit history.
package deploytag
