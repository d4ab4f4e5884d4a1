package deploytag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deploykit/deploytag/internal/deploy"
	"github.com/deploykit/deploytag/internal/execshell"
	"github.com/deploykit/deploytag/internal/githubapi"
	"github.com/deploykit/deploytag/internal/gitrepo"
	"github.com/deploykit/deploytag/internal/utils"
	flagutils "github.com/deploykit/deploytag/internal/utils/flags"
	pathutils "github.com/deploykit/deploytag/internal/utils/path"
)

const (
	commandUseName          = "tag"
	commandShortDescription = "Tag the current deployment and generate release notes"
	commandLongDescription  = "tag selects the most recent deployment tag, summarizes conventional commits since it, writes a release-notes file, and creates an annotated tag named from the deployment time and identifier."
	commandExampleTemplate  = "deploytag tag --deploy-id 421 --deploy-time 2024-01-03T00:00:00Z --repository acme/storefront"

	workingDirectoryFlagName = "working-directory"
	workingDirectoryUsage    = "Path to the repository work tree (defaults to the current directory)"
	repositoryFlagName       = "repository"
	repositoryFlagUsage      = "GitHub repository in owner/name form used for author enrichment"
	targetReferenceFlagName  = "commit"
	targetReferenceFlagUsage = "Reference resolved to the commit being tagged"
	deployTimeFlagName       = "deploy-time"
	deployTimeFlagUsage      = "Deployment time as RFC 3339 or Unix seconds (defaults to now)"
	deployIdentifierFlagName = "deploy-id"
	deployIdentifierUsage    = "Numeric identifier of the deployment"
	tagPrefixFlagName        = "tag-prefix"
	tagPrefixFlagUsage       = "Prefix shared by deployment tags"
	timestampFormatFlagName  = "time-format"
	timestampFormatFlagUsage = "strftime-style pattern rendering the deployment time inside the tag name"
	maxCommitsFlagName       = "max-commits"
	maxCommitsFlagUsage      = "Upper bound on commits examined for the changelog"
	outputPathFlagName       = "output"
	outputPathFlagUsage      = "File receiving the key=value report in addition to standard output"

	missingDeployIdentifierMessage  = "deploy identifier is required"
	deployTimeParseErrorTemplate    = "unable to parse deployment time %q: provide RFC 3339 or Unix seconds"
	workingDirectoryErrorTemplate   = "unable to determine working directory: %w"
	reportWriteErrorTemplate        = "unable to append report to %s: %w"
	authorResolverSkippedLogMessage = "author enrichment disabled"
	authorResolverReasonLogField    = "reason"
	missingTokenReasonConstant      = "api token not configured"
	missingRepositoryReasonConstant = "repository not configured"

	tagNameReportKeyConstant      = "tag_name"
	releaseBodyReportKeyConstant  = "release_body_path"
	commitAuthorsReportKey        = "commit_authors"
	reportLineTemplateConstant    = "%s=%s\n"
	commitAuthorsJoinSeparator    = ","
	reportFilePermissionsConstant = 0o644
)

// CommandBuilder assembles the deployment tag command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	AuthorResolver        githubapi.AuthorResolver
	ConfigurationProvider func() CommandConfiguration
	WorkingDirectory      string
	CurrentTimeProvider   func() time.Time
}

// Build constructs the tag command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseName,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleTemplate,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(workingDirectoryFlagName, "", workingDirectoryUsage)
	command.Flags().String(repositoryFlagName, "", repositoryFlagUsage)
	command.Flags().String(targetReferenceFlagName, "", targetReferenceFlagUsage)
	command.Flags().String(deployTimeFlagName, "", deployTimeFlagUsage)
	command.Flags().Int(deployIdentifierFlagName, 0, deployIdentifierUsage)
	command.Flags().String(tagPrefixFlagName, "", tagPrefixFlagUsage)
	command.Flags().String(timestampFormatFlagName, "", timestampFormatFlagUsage)
	command.Flags().Int(maxCommitsFlagName, 0, maxCommitsFlagUsage)
	command.Flags().String(outputPathFlagName, "", outputPathFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration)

	if !command.Flags().Changed(deployIdentifierFlagName) {
		return errors.New(missingDeployIdentifierMessage)
	}
	deployIdentifier, identifierError := command.Flags().GetInt(deployIdentifierFlagName)
	if identifierError != nil {
		return identifierError
	}

	deploymentTime, timeError := builder.resolveDeploymentTime(command)
	if timeError != nil {
		return timeError
	}

	workingDirectory, directoryError := builder.resolveWorkingDirectory(configuration)
	if directoryError != nil {
		return directoryError
	}

	logger := resolveLogger(builder.LoggerProvider)

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryClient, clientError := gitrepo.NewRepositoryClient(gitExecutor)
	if clientError != nil {
		return clientError
	}

	authorResolver, resolverError := builder.resolveAuthorResolver(command.Context(), configuration, logger)
	if resolverError != nil {
		return resolverError
	}

	service, serviceError := deploy.NewService(deploy.ServiceDependencies{
		Repository:     repositoryClient,
		AuthorResolver: authorResolver,
		Logger:         logger,
	})
	if serviceError != nil {
		return serviceError
	}

	dryRun := false
	if executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command); executionFlagsAvailable {
		dryRun = executionFlags.DryRun
	}

	result, tagError := service.Tag(command.Context(), deploy.Options{
		WorkingDirectory: workingDirectory,
		TagPrefix:        configuration.TagPrefix,
		TargetReference:  configuration.TargetReference,
		TimestampFormat:  configuration.TimestampFormat,
		DeploymentTime:   deploymentTime,
		DeploymentID:     deployIdentifier,
		MaxCommits:       configuration.MaxCommits,
		DryRun:           dryRun,
	})
	if tagError != nil {
		return tagError
	}

	return builder.emitReport(command, configuration.OutputPath, result)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	overridden := configuration
	commandFlags := command.Flags()

	if commandFlags.Changed(workingDirectoryFlagName) {
		if flagValue, flagError := commandFlags.GetString(workingDirectoryFlagName); flagError == nil {
			overridden.WorkingDirectory = strings.TrimSpace(flagValue)
		}
	}
	if commandFlags.Changed(repositoryFlagName) {
		if flagValue, flagError := commandFlags.GetString(repositoryFlagName); flagError == nil {
			overridden.Repository = strings.TrimSpace(flagValue)
		}
	}
	if commandFlags.Changed(targetReferenceFlagName) {
		if flagValue, flagError := commandFlags.GetString(targetReferenceFlagName); flagError == nil {
			overridden.TargetReference = strings.TrimSpace(flagValue)
		}
	}
	if commandFlags.Changed(tagPrefixFlagName) {
		if flagValue, flagError := commandFlags.GetString(tagPrefixFlagName); flagError == nil {
			overridden.TagPrefix = strings.TrimSpace(flagValue)
		}
	}
	if commandFlags.Changed(timestampFormatFlagName) {
		if flagValue, flagError := commandFlags.GetString(timestampFormatFlagName); flagError == nil {
			overridden.TimestampFormat = strings.TrimSpace(flagValue)
		}
	}
	if commandFlags.Changed(maxCommitsFlagName) {
		if flagValue, flagError := commandFlags.GetInt(maxCommitsFlagName); flagError == nil {
			overridden.MaxCommits = flagValue
		}
	}
	if commandFlags.Changed(outputPathFlagName) {
		if flagValue, flagError := commandFlags.GetString(outputPathFlagName); flagError == nil {
			overridden.OutputPath = strings.TrimSpace(flagValue)
		}
	}

	return overridden
}

func (builder *CommandBuilder) resolveDeploymentTime(command *cobra.Command) (time.Time, error) {
	rawValue := ""
	if command.Flags().Changed(deployTimeFlagName) {
		flagValue, flagError := command.Flags().GetString(deployTimeFlagName)
		if flagError != nil {
			return time.Time{}, flagError
		}
		rawValue = strings.TrimSpace(flagValue)
	}

	if len(rawValue) == 0 {
		if builder.CurrentTimeProvider != nil {
			return builder.CurrentTimeProvider().UTC(), nil
		}
		return time.Now().UTC(), nil
	}

	if parsedTime, parseError := time.Parse(time.RFC3339, rawValue); parseError == nil {
		return parsedTime.UTC(), nil
	}
	if epochSeconds, parseError := strconv.ParseInt(rawValue, 10, 64); parseError == nil {
		return time.Unix(epochSeconds, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf(deployTimeParseErrorTemplate, rawValue)
}

func (builder *CommandBuilder) resolveWorkingDirectory(configuration CommandConfiguration) (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return pathutils.NewHomeExpander().Expand(builder.WorkingDirectory), nil
	}
	if len(configuration.WorkingDirectory) > 0 {
		return pathutils.NewHomeExpander().Expand(configuration.WorkingDirectory), nil
	}

	workingDirectory, directoryError := os.Getwd()
	if directoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplate, directoryError)
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}

func (builder *CommandBuilder) resolveAuthorResolver(executionContext context.Context, configuration CommandConfiguration, logger *zap.Logger) (githubapi.AuthorResolver, error) {
	if builder.AuthorResolver != nil {
		return builder.AuthorResolver, nil
	}

	if len(configuration.APIToken) == 0 {
		logger.Debug(authorResolverSkippedLogMessage, zap.String(authorResolverReasonLogField, missingTokenReasonConstant))
		return githubapi.NoopAuthorResolver{}, nil
	}
	if len(configuration.Repository) == 0 {
		logger.Debug(authorResolverSkippedLogMessage, zap.String(authorResolverReasonLogField, missingRepositoryReasonConstant))
		return githubapi.NoopAuthorResolver{}, nil
	}

	return githubapi.NewClient(executionContext, configuration.APIToken, configuration.Repository)
}

func (builder *CommandBuilder) emitReport(command *cobra.Command, outputPath string, result deploy.Result) error {
	reportLines := fmt.Sprintf(reportLineTemplateConstant, tagNameReportKeyConstant, result.TagName) +
		fmt.Sprintf(reportLineTemplateConstant, releaseBodyReportKeyConstant, result.ReleaseNotesPath) +
		fmt.Sprintf(reportLineTemplateConstant, commitAuthorsReportKey, strings.Join(result.CommitAuthors, commitAuthorsJoinSeparator))

	reportWriter := utils.NewFlushingWriter(command.OutOrStdout())
	if reportWriter != nil {
		if _, writeError := reportWriter.Write([]byte(reportLines)); writeError != nil {
			return writeError
		}
	}

	if len(outputPath) == 0 {
		return nil
	}

	outputPath = pathutils.NewHomeExpander().Expand(outputPath)
	reportFile, openError := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, reportFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(reportWriteErrorTemplate, outputPath, openError)
	}
	defer reportFile.Close()

	if _, writeError := reportFile.WriteString(reportLines); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplate, outputPath, writeError)
	}
	return nil
}
