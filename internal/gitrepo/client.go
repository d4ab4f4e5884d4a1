package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deploykit/deploytag/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "git executor not configured"
	requiredValueMessageConstant         = "value required"
	invalidInputErrorTemplateConstant    = "%s: %s"
	repositoryPathFieldNameConstant      = "repository_path"
	referenceFieldNameConstant           = "reference"
	tagNameFieldNameConstant             = "tag_name"

	gitRevParseSubcommandConstant   = "rev-parse"
	gitForEachRefSubcommandConstant = "for-each-ref"
	gitMergeBaseSubcommandConstant  = "merge-base"
	gitLogSubcommandConstant        = "log"
	gitTagSubcommandConstant        = "tag"
	gitWorkTreeFlagConstant         = "--is-inside-work-tree"
	gitVerifyFlagConstant           = "--verify"
	gitQuietFlagConstant            = "--quiet"
	gitAnnotateFlagConstant         = "-a"
	gitMessageFlagConstant          = "-m"
	gitFormatFlagConstant           = "--format"
	gitMaxCountFlagConstant         = "--max-count"
	commitSuffixConstant            = "^{commit}"
	tagReferencePrefixConstant      = "refs/tags/"

	tagListFormatConstant    = "%(refname:short)%1f%(creatordate:unix)"
	commitLogFormatConstant  = "%H%x1f%ae%x1f%B%x1e"
	fieldSeparatorConstant   = "\x1f"
	recordSeparatorConstant  = "\x1e"
	rangeExpressionTemplate  = "%s..%s"
	flagAssignmentTemplate   = "%s=%s"
	commitFieldCountConstant = 3
	tagFieldCountConstant    = 2
)

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for repository operations.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// GitExecutor is the subset of execshell.ShellExecutor required by the client.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TagCandidate describes an existing tag together with its creation date.
//
// The date is the tag object's own timestamp for annotated tags and the
// pointed-at commit's timestamp for lightweight tags, matching the semantics
// of git's creatordate field.
type TagCandidate struct {
	Name       string
	TargetDate time.Time
}

// Commit carries the fields of one repository commit needed for classification.
type Commit struct {
	Hash        string
	AuthorEmail string
	Message     string
}

// RepositoryClient performs read and tag-creation operations against one repository.
type RepositoryClient struct {
	executor GitExecutor
}

// NewRepositoryClient validates dependencies and constructs a RepositoryClient.
func NewRepositoryClient(executor GitExecutor) (*RepositoryClient, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryClient{executor: executor}, nil
}

// VerifyRepository confirms the provided path is inside a Git work tree.
func (client *RepositoryClient) VerifyRepository(executionContext context.Context, repositoryPath string) error {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return validationError
	}

	_, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// ResolveCommit resolves a reference to a full commit hash.
func (client *RepositoryClient) ResolveCommit(executionContext context.Context, repositoryPath string, reference string) (string, error) {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return "", validationError
	}
	if validationError := requireValue(reference, referenceFieldNameConstant); validationError != nil {
		return "", validationError
	}

	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, strings.TrimSpace(reference) + commitSuffixConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ListTags enumerates tags whose names start with the provided prefix.
func (client *RepositoryClient) ListTags(executionContext context.Context, repositoryPath string, tagPrefix string) ([]TagCandidate, error) {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitForEachRefSubcommandConstant,
			fmt.Sprintf(flagAssignmentTemplate, gitFormatFlagConstant, tagListFormatConstant),
			tagReferencePrefixConstant,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	candidates := []TagCandidate{}
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}
		lineFields := strings.SplitN(trimmedLine, fieldSeparatorConstant, tagFieldCountConstant)
		if len(lineFields) != tagFieldCountConstant {
			continue
		}
		tagName := strings.TrimSpace(lineFields[0])
		if !strings.HasPrefix(tagName, tagPrefix) {
			continue
		}
		epochSeconds, parseError := strconv.ParseInt(strings.TrimSpace(lineFields[1]), 10, 64)
		if parseError != nil {
			continue
		}
		candidates = append(candidates, TagCandidate{Name: tagName, TargetDate: time.Unix(epochSeconds, 0).UTC()})
	}
	return candidates, nil
}

// MergeBase computes the nearest common ancestor of two references.
//
// The second return value reports whether a merge base exists; disjoint
// histories yield false without an error.
func (client *RepositoryClient) MergeBase(executionContext context.Context, repositoryPath string, firstReference string, secondReference string) (string, bool, error) {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return "", false, validationError
	}
	if validationError := requireValue(firstReference, referenceFieldNameConstant); validationError != nil {
		return "", false, validationError
	}
	if validationError := requireValue(secondReference, referenceFieldNameConstant); validationError != nil {
		return "", false, validationError
	}

	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:           []string{gitMergeBaseSubcommandConstant, strings.TrimSpace(firstReference), strings.TrimSpace(secondReference)},
		WorkingDirectory:    repositoryPath,
		NonZeroExitExpected: true,
	})
	if executionError != nil {
		if isExpectedCommandFailure(executionError) {
			return "", false, nil
		}
		return "", false, executionError
	}

	mergeBaseHash := strings.TrimSpace(executionResult.StandardOutput)
	if len(mergeBaseHash) == 0 {
		return "", false, nil
	}
	return mergeBaseHash, true, nil
}

// ListCommitRange returns up to maxCommits commits reachable from targetReference
// but not from baseReference, newest first.
func (client *RepositoryClient) ListCommitRange(executionContext context.Context, repositoryPath string, baseReference string, targetReference string, maxCommits int) ([]Commit, error) {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return nil, validationError
	}
	if validationError := requireValue(baseReference, referenceFieldNameConstant); validationError != nil {
		return nil, validationError
	}
	if validationError := requireValue(targetReference, referenceFieldNameConstant); validationError != nil {
		return nil, validationError
	}

	rangeExpression := fmt.Sprintf(rangeExpressionTemplate, strings.TrimSpace(baseReference), strings.TrimSpace(targetReference))
	executionResult, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitLogSubcommandConstant,
			fmt.Sprintf(flagAssignmentTemplate, gitMaxCountFlagConstant, strconv.Itoa(maxCommits)),
			fmt.Sprintf(flagAssignmentTemplate, gitFormatFlagConstant, commitLogFormatConstant),
			rangeExpression,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	commits := []Commit{}
	for _, commitRecord := range strings.Split(executionResult.StandardOutput, recordSeparatorConstant) {
		trimmedRecord := strings.TrimLeft(commitRecord, "\n")
		if len(strings.TrimSpace(trimmedRecord)) == 0 {
			continue
		}
		recordFields := strings.SplitN(trimmedRecord, fieldSeparatorConstant, commitFieldCountConstant)
		if len(recordFields) != commitFieldCountConstant {
			continue
		}
		commits = append(commits, Commit{
			Hash:        strings.TrimSpace(recordFields[0]),
			AuthorEmail: strings.TrimSpace(recordFields[1]),
			Message:     strings.TrimRight(recordFields[2], "\n"),
		})
	}
	return commits, nil
}

// TagExists reports whether a tag with the provided name already exists.
func (client *RepositoryClient) TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error) {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return false, validationError
	}
	if validationError := requireValue(tagName, tagNameFieldNameConstant); validationError != nil {
		return false, validationError
	}

	_, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:           []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, tagReferencePrefixConstant + strings.TrimSpace(tagName)},
		WorkingDirectory:    repositoryPath,
		NonZeroExitExpected: true,
	})
	if executionError != nil {
		if isExpectedCommandFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

// CreateAnnotatedTag creates an annotated tag pointing at the target commit.
func (client *RepositoryClient) CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, targetCommit string, message string) error {
	if validationError := requireValue(repositoryPath, repositoryPathFieldNameConstant); validationError != nil {
		return validationError
	}
	if validationError := requireValue(tagName, tagNameFieldNameConstant); validationError != nil {
		return validationError
	}
	if validationError := requireValue(targetCommit, referenceFieldNameConstant); validationError != nil {
		return validationError
	}

	_, executionError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitTagSubcommandConstant,
			gitAnnotateFlagConstant,
			strings.TrimSpace(tagName),
			strings.TrimSpace(targetCommit),
			gitMessageFlagConstant,
			message,
		},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

func requireValue(value string, fieldName string) error {
	if len(strings.TrimSpace(value)) == 0 {
		return InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return nil
}

func isExpectedCommandFailure(executionError error) bool {
	failedError := execshell.CommandFailedError{}
	return errors.As(executionError, &failedError)
}
