// Package deploy orchestrates deployment tagging: previous-tag selection,
// changelog construction, release-notes artifacts, and annotated tag creation.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deploykit/deploytag/internal/changelog"
	"github.com/deploykit/deploytag/internal/conventional"
	"github.com/deploykit/deploytag/internal/githubapi"
	"github.com/deploykit/deploytag/internal/gitrepo"
)

const (
	// DefaultTagPrefix matches deployment tags created by previous runs.
	DefaultTagPrefix = "v2."
	// DefaultTimestampFormat renders deployment times as compact UTC stamps.
	DefaultTimestampFormat = "%Y%m%dT%H%M%S"
	// DefaultMaxCommits bounds how many commits a single changelog examines.
	DefaultMaxCommits = 50

	repositoryNotConfiguredMessageConstant = "repository client not configured"
	workingDirectoryRequiredMessage        = "working directory is required"
	targetReferenceRequiredMessage         = "target reference is required"
	deploymentTimeRequiredMessage          = "deployment time is required"
	tagCollisionErrorTemplateConstant      = "tag %s already exists"
	notesWriteErrorTemplateConstant        = "unable to write release notes: %w"
	tagNameTemplateConstant                = "%s%s.%d"
	releaseNotesFileTemplateConstant       = "release_notes-%s.txt"
	deploymentHeaderTemplateConstant       = "Deployment %s"
	messageSectionSeparatorConstant        = "\n\n"
	trailingNewlineConstant                = "\n"
	releaseNotesFilePermissionsConstant    = 0o644

	noMergeBaseWarningMessageConstant      = "no common ancestor between previous tag and target; changelog will be empty"
	authorResolutionWarningMessageConstant = "author resolution failed; continuing without contributor list"
	previousTagSelectedMessageConstant     = "previous deployment tag selected"
	noPreviousTagMessageConstant           = "no previous deployment tag found"
	commitRangeEnumeratedMessageConstant   = "commit range enumerated"
	deploymentTaggedMessageConstant        = "deployment tagged"
	previousTagLogFieldConstant            = "previous_tag"
	previousTagDateLogFieldConstant        = "previous_tag_date"
	targetCommitLogFieldConstant           = "target_commit"
	tagNameLogFieldConstant                = "tag_name"
	commitCountLogFieldConstant            = "commit_count"
	dryRunLogFieldConstant                 = "dry_run"
)

// ErrRepositoryNotConfigured indicates the service was built without a repository client.
var ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)

// RepositoryClient is the subset of gitrepo.RepositoryClient used by the service.
type RepositoryClient interface {
	VerifyRepository(executionContext context.Context, repositoryPath string) error
	ResolveCommit(executionContext context.Context, repositoryPath string, reference string) (string, error)
	ListTags(executionContext context.Context, repositoryPath string, tagPrefix string) ([]gitrepo.TagCandidate, error)
	MergeBase(executionContext context.Context, repositoryPath string, firstReference string, secondReference string) (string, bool, error)
	ListCommitRange(executionContext context.Context, repositoryPath string, baseReference string, targetReference string, maxCommits int) ([]gitrepo.Commit, error)
	TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error)
	CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, targetCommit string, message string) error
}

// ServiceDependencies carries the collaborators required by the deploy service.
type ServiceDependencies struct {
	Repository     RepositoryClient
	AuthorResolver githubapi.AuthorResolver
	Logger         *zap.Logger
}

// Options configures a single tagging run.
type Options struct {
	WorkingDirectory string
	TagPrefix        string
	TargetReference  string
	TimestampFormat  string
	DeploymentTime   time.Time
	DeploymentID     int
	MaxCommits       int
	DryRun           bool
}

// Result describes the artifacts produced by a tagging run.
type Result struct {
	TagName          string
	ReleaseNotesPath string
	Message          string
	CommitAuthors    []string
	PreviousTagName  string
}

// Service coordinates the deployment tagging workflow.
type Service struct {
	repository     RepositoryClient
	authorResolver githubapi.AuthorResolver
	logger         *zap.Logger
}

// NewService validates dependencies and constructs a deploy service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}

	authorResolver := dependencies.AuthorResolver
	if authorResolver == nil {
		authorResolver = githubapi.NoopAuthorResolver{}
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{repository: dependencies.Repository, authorResolver: authorResolver, logger: logger}, nil
}

// Tag performs one deployment tagging run.
//
// All repository reads happen before any write; the release-notes file and
// the annotated tag are only produced once the message is fully rendered, and
// the tag annotation is byte-identical to the file contents.
func (service *Service) Tag(executionContext context.Context, options Options) (Result, error) {
	sanitizedOptions, validationError := sanitizeOptions(options)
	if validationError != nil {
		return Result{}, validationError
	}

	timestampLayout, layoutError := ConvertTimestampLayout(sanitizedOptions.TimestampFormat)
	if layoutError != nil {
		return Result{}, layoutError
	}

	if repositoryError := service.repository.VerifyRepository(executionContext, sanitizedOptions.WorkingDirectory); repositoryError != nil {
		return Result{}, repositoryError
	}

	targetCommit, resolveError := service.repository.ResolveCommit(executionContext, sanitizedOptions.WorkingDirectory, sanitizedOptions.TargetReference)
	if resolveError != nil {
		return Result{}, resolveError
	}

	tagCandidates, listError := service.repository.ListTags(executionContext, sanitizedOptions.WorkingDirectory, sanitizedOptions.TagPrefix)
	if listError != nil {
		return Result{}, listError
	}

	previousTag, previousTagFound := changelog.SelectLatestTag(tagCandidates, sanitizedOptions.TagPrefix)
	if previousTagFound {
		service.logger.Debug(
			previousTagSelectedMessageConstant,
			zap.String(previousTagLogFieldConstant, previousTag.Name),
			zap.Time(previousTagDateLogFieldConstant, previousTag.TargetDate),
		)
	} else {
		service.logger.Debug(noPreviousTagMessageConstant)
	}

	newTagName := fmt.Sprintf(
		tagNameTemplateConstant,
		sanitizedOptions.TagPrefix,
		sanitizedOptions.DeploymentTime.UTC().Format(timestampLayout),
		sanitizedOptions.DeploymentID,
	)

	tagAlreadyExists, existsError := service.repository.TagExists(executionContext, sanitizedOptions.WorkingDirectory, newTagName)
	if existsError != nil {
		return Result{}, existsError
	}
	if tagAlreadyExists {
		return Result{}, fmt.Errorf(tagCollisionErrorTemplateConstant, newTagName)
	}

	message, messageError := service.composeMessage(executionContext, sanitizedOptions, newTagName, targetCommit, previousTag, previousTagFound)
	if messageError != nil {
		return Result{}, messageError
	}

	commitAuthors := service.resolveAuthors(executionContext, previousTag, previousTagFound, targetCommit)

	releaseNotesPath := filepath.Join(sanitizedOptions.WorkingDirectory, fmt.Sprintf(releaseNotesFileTemplateConstant, newTagName))
	if writeError := os.WriteFile(releaseNotesPath, []byte(message), releaseNotesFilePermissionsConstant); writeError != nil {
		return Result{}, fmt.Errorf(notesWriteErrorTemplateConstant, writeError)
	}

	if !sanitizedOptions.DryRun {
		if tagError := service.repository.CreateAnnotatedTag(executionContext, sanitizedOptions.WorkingDirectory, newTagName, targetCommit, message); tagError != nil {
			return Result{}, tagError
		}
	}

	service.logger.Info(
		deploymentTaggedMessageConstant,
		zap.String(tagNameLogFieldConstant, newTagName),
		zap.String(targetCommitLogFieldConstant, targetCommit),
		zap.Bool(dryRunLogFieldConstant, sanitizedOptions.DryRun),
	)

	previousTagName := ""
	if previousTagFound {
		previousTagName = previousTag.Name
	}

	return Result{
		TagName:          newTagName,
		ReleaseNotesPath: releaseNotesPath,
		Message:          message,
		CommitAuthors:    commitAuthors,
		PreviousTagName:  previousTagName,
	}, nil
}

func (service *Service) composeMessage(executionContext context.Context, options Options, newTagName string, targetCommit string, previousTag gitrepo.TagCandidate, previousTagFound bool) (string, error) {
	headerLine := fmt.Sprintf(deploymentHeaderTemplateConstant, newTagName)
	if !previousTagFound {
		return headerLine + trailingNewlineConstant, nil
	}

	records, enumerateError := service.enumerateChanges(executionContext, options, previousTag.Name, targetCommit)
	if enumerateError != nil {
		return "", enumerateError
	}

	elapsed := changelog.FormatElapsed(previousTag.TargetDate, options.DeploymentTime.UTC())
	changelogBody := changelog.Build(records, previousTag.Name, elapsed)
	return headerLine + messageSectionSeparatorConstant + changelogBody + trailingNewlineConstant, nil
}

func (service *Service) enumerateChanges(executionContext context.Context, options Options, previousTagName string, targetCommit string) ([]conventional.ParsedCommit, error) {
	mergeBaseHash, mergeBaseFound, mergeBaseError := service.repository.MergeBase(executionContext, options.WorkingDirectory, previousTagName, targetCommit)
	if mergeBaseError != nil {
		return nil, mergeBaseError
	}
	if !mergeBaseFound {
		service.logger.Warn(
			noMergeBaseWarningMessageConstant,
			zap.String(previousTagLogFieldConstant, previousTagName),
			zap.String(targetCommitLogFieldConstant, targetCommit),
		)
		return nil, nil
	}

	rangeCommits, rangeError := service.repository.ListCommitRange(executionContext, options.WorkingDirectory, mergeBaseHash, targetCommit, options.MaxCommits)
	if rangeError != nil {
		return nil, rangeError
	}

	service.logger.Debug(
		commitRangeEnumeratedMessageConstant,
		zap.String(previousTagLogFieldConstant, previousTagName),
		zap.Int(commitCountLogFieldConstant, len(rangeCommits)),
	)

	records := []conventional.ParsedCommit{}
	for _, rangeCommit := range rangeCommits {
		if record, matched := conventional.Classify(rangeCommit.Message, rangeCommit.AuthorEmail); matched {
			records = append(records, record)
		}
	}
	return records, nil
}

func (service *Service) resolveAuthors(executionContext context.Context, previousTag gitrepo.TagCandidate, previousTagFound bool, targetCommit string) []string {
	if !previousTagFound {
		return nil
	}

	commitAuthors, resolveError := service.authorResolver.ResolveAuthors(executionContext, previousTag.Name, targetCommit)
	if resolveError != nil {
		service.logger.Warn(authorResolutionWarningMessageConstant, zap.Error(resolveError))
		return nil
	}
	return commitAuthors
}

func sanitizeOptions(options Options) (Options, error) {
	sanitized := options
	sanitized.WorkingDirectory = strings.TrimSpace(options.WorkingDirectory)
	sanitized.TagPrefix = strings.TrimSpace(options.TagPrefix)
	sanitized.TargetReference = strings.TrimSpace(options.TargetReference)
	sanitized.TimestampFormat = strings.TrimSpace(options.TimestampFormat)

	if len(sanitized.WorkingDirectory) == 0 {
		return Options{}, errors.New(workingDirectoryRequiredMessage)
	}
	if len(sanitized.TargetReference) == 0 {
		return Options{}, errors.New(targetReferenceRequiredMessage)
	}
	if sanitized.DeploymentTime.IsZero() {
		return Options{}, errors.New(deploymentTimeRequiredMessage)
	}
	if len(sanitized.TagPrefix) == 0 {
		sanitized.TagPrefix = DefaultTagPrefix
	}
	if len(sanitized.TimestampFormat) == 0 {
		sanitized.TimestampFormat = DefaultTimestampFormat
	}
	if sanitized.MaxCommits <= 0 {
		sanitized.MaxCommits = DefaultMaxCommits
	}

	return sanitized, nil
}
