// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryClient for resolving commits, enumerating tags with
// their creation dates, computing merge bases, walking bounded commit ranges,
// and creating annotated tags, all through the execshell git executor.
package gitrepo
