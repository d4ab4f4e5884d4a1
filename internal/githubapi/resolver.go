// Package githubapi enriches deployment reports with contributor identities
// resolved through the GitHub compare API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	repositoryIdentitySeparatorConstant       = "/"
	repositoryIdentityPartCountConstant       = 2
	invalidRepositoryIdentityTemplateConstant = "invalid repository identity: %s"
	tokenRequiredMessageConstant              = "api token required"
	compareServiceNotConfiguredMessage        = "compare service not configured"
	comparePageSizeConstant                   = 100
	compareErrorTemplateConstant              = "compare %s...%s failed: %w"
)

// Sentinel errors reported during resolver construction.
var (
	ErrTokenRequired               = errors.New(tokenRequiredMessageConstant)
	ErrCompareServiceNotConfigured = errors.New(compareServiceNotConfiguredMessage)
)

// AuthorResolver lists the distinct contributors between two references.
type AuthorResolver interface {
	ResolveAuthors(executionContext context.Context, baseReference string, headReference string) ([]string, error)
}

// NoopAuthorResolver contributes no authors; used when enrichment is disabled.
type NoopAuthorResolver struct{}

// ResolveAuthors implements AuthorResolver with an empty result.
func (NoopAuthorResolver) ResolveAuthors(context.Context, string, string) ([]string, error) {
	return nil, nil
}

// CompareService is the subset of the go-github repositories API used by the resolver.
type CompareService interface {
	CompareCommits(executionContext context.Context, owner string, repository string, base string, head string, options *github.ListOptions) (*github.CommitsComparison, *github.Response, error)
}

// Client resolves contributor identities through the GitHub compare API.
type Client struct {
	compareService  CompareService
	repositoryOwner string
	repositoryName  string
}

// NewClient constructs a Client authenticated with the provided token for the
// "owner/name" repository identity.
func NewClient(executionContext context.Context, apiToken string, repositoryIdentity string) (*Client, error) {
	if len(strings.TrimSpace(apiToken)) == 0 {
		return nil, ErrTokenRequired
	}

	repositoryOwner, repositoryName, identityError := splitRepositoryIdentity(repositoryIdentity)
	if identityError != nil {
		return nil, identityError
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(apiToken)})
	httpClient := oauth2.NewClient(executionContext, tokenSource)
	githubClient := github.NewClient(httpClient)

	return &Client{
		compareService:  githubClient.Repositories,
		repositoryOwner: repositoryOwner,
		repositoryName:  repositoryName,
	}, nil
}

// NewClientWithCompareService constructs a Client around an existing compare
// service implementation; tests use this with fakes.
func NewClientWithCompareService(compareService CompareService, repositoryIdentity string) (*Client, error) {
	if compareService == nil {
		return nil, ErrCompareServiceNotConfigured
	}

	repositoryOwner, repositoryName, identityError := splitRepositoryIdentity(repositoryIdentity)
	if identityError != nil {
		return nil, identityError
	}

	return &Client{
		compareService:  compareService,
		repositoryOwner: repositoryOwner,
		repositoryName:  repositoryName,
	}, nil
}

// ResolveAuthors lists the distinct contributor logins between two references.
//
// Only the first page of compared commits is inspected; ranges that exceed
// one page report a truncated author set.
func (client *Client) ResolveAuthors(executionContext context.Context, baseReference string, headReference string) ([]string, error) {
	comparison, _, compareError := client.compareService.CompareCommits(
		executionContext,
		client.repositoryOwner,
		client.repositoryName,
		baseReference,
		headReference,
		&github.ListOptions{PerPage: comparePageSizeConstant},
	)
	if compareError != nil {
		return nil, fmt.Errorf(compareErrorTemplateConstant, baseReference, headReference, compareError)
	}

	if comparison == nil || comparison.GetTotalCommits() == 0 {
		return nil, nil
	}

	seenAuthors := map[string]struct{}{}
	authorLogins := []string{}
	for _, comparedCommit := range comparison.Commits {
		authorLogin := comparedCommit.GetAuthor().GetLogin()
		if len(authorLogin) == 0 {
			continue
		}
		if _, alreadySeen := seenAuthors[authorLogin]; alreadySeen {
			continue
		}
		seenAuthors[authorLogin] = struct{}{}
		authorLogins = append(authorLogins, authorLogin)
	}

	sort.Strings(authorLogins)
	return authorLogins, nil
}

func splitRepositoryIdentity(repositoryIdentity string) (string, string, error) {
	identityParts := strings.Split(strings.TrimSpace(repositoryIdentity), repositoryIdentitySeparatorConstant)
	if len(identityParts) != repositoryIdentityPartCountConstant {
		return "", "", fmt.Errorf(invalidRepositoryIdentityTemplateConstant, repositoryIdentity)
	}

	repositoryOwner := strings.TrimSpace(identityParts[0])
	repositoryName := strings.TrimSpace(identityParts[1])
	if len(repositoryOwner) == 0 || len(repositoryName) == 0 {
		return "", "", fmt.Errorf(invalidRepositoryIdentityTemplateConstant, repositoryIdentity)
	}

	return repositoryOwner, repositoryName, nil
}
