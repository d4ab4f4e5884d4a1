package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitWorkTreeFlagConstant             = "--is-inside-work-tree"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
	gitMergeBaseSubcommandNameConstant  = "merge-base"
	gitLogSubcommandNameConstant        = "log"
	gitTagSubcommandNameConstant        = "tag"
)

const (
	gitWorkTreeStartTemplateConstant            = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant          = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant          = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant = "Could not analyze %s: %s"

	gitRevisionStartTemplateConstant            = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant          = "%s in %s resolved to %s"
	gitRevisionEmptySuccessTemplateConstant     = "%s in %s did not resolve to a revision"
	gitRevisionFailureTemplateConstant          = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant = "Unable to resolve %s in %s: %s"

	gitTagListStartTemplateConstant            = "Listing tags in %s"
	gitTagListSuccessTemplateConstant          = "Listed tags in %s"
	gitTagListFailureTemplateConstant          = "Failed to list tags in %s (exit code %d%s)"
	gitTagListExecutionFailureTemplateConstant = "Unable to list tags in %s: %s"

	gitMergeBaseStartTemplateConstant            = "Computing merge base of %s and %s in %s"
	gitMergeBaseSuccessTemplateConstant          = "Computed merge base of %s and %s in %s"
	gitMergeBaseFailureTemplateConstant          = "Failed to compute merge base of %s and %s in %s (exit code %d%s)"
	gitMergeBaseExecutionFailureTemplateConstant = "Unable to compute merge base of %s and %s in %s: %s"

	gitLogStartTemplateConstant            = "Reading commit history %s in %s"
	gitLogSuccessTemplateConstant          = "Read commit history %s in %s"
	gitLogFailureTemplateConstant          = "Failed to read commit history %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant = "Unable to read commit history %s in %s: %s"

	gitTagCreateStartTemplateConstant            = "Creating tag %s in %s"
	gitTagCreateSuccessTemplateConstant          = "Created tag %s in %s"
	gitTagCreateFailureTemplateConstant          = "Failed to create tag %s in %s (exit code %d%s)"
	gitTagCreateExecutionFailureTemplateConstant = "Unable to create tag %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeGitTagListMessage(command, result, failure, stage)
	case gitMergeBaseSubcommandNameConstant:
		return formatter.describeGitMergeBaseMessage(command, result, failure, stage)
	case gitLogSubcommandNameConstant:
		return formatter.describeGitLogMessage(command, result, failure, stage)
	case gitTagSubcommandNameConstant:
		return formatter.describeGitTagCreateMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitWorkTreeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	reference := formatter.resolveRevisionReference(arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 {
			return fmt.Sprintf(gitRevisionEmptySuccessTemplateConstant, reference, workingDirectory)
		}
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, trimmed)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitTagListMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitTagListStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitTagListSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitTagListFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitTagListExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMergeBaseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	firstReference := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 1))
	secondReference := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 2))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitMergeBaseStartTemplateConstant, firstReference, secondReference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitMergeBaseSuccessTemplateConstant, firstReference, secondReference, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitMergeBaseFailureTemplateConstant, firstReference, secondReference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitMergeBaseExecutionFailureTemplateConstant, firstReference, secondReference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitLogMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	rangeExpression := formatter.ensureValue(formatter.resolveLogRange(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLogStartTemplateConstant, rangeExpression, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitLogSuccessTemplateConstant, rangeExpression, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitLogFailureTemplateConstant, rangeExpression, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitLogExecutionFailureTemplateConstant, rangeExpression, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitTagCreateMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	tagName := formatter.ensureValue(formatter.resolveTagName(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitTagCreateStartTemplateConstant, tagName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitTagCreateSuccessTemplateConstant, tagName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitTagCreateFailureTemplateConstant, tagName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitTagCreateExecutionFailureTemplateConstant, tagName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.describeCommand(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand) string {
	joinedArguments := strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	label := strings.TrimSpace(fmt.Sprintf(commandLabelTemplateConstant, command.Name, joinedArguments))
	if len(command.Details.WorkingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
	}
	return label
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmed := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func (formatter CommandMessageFormatter) resolveRevisionReference(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex > 0; argumentIndex-- {
		candidate := strings.TrimSpace(arguments[argumentIndex])
		if len(candidate) == 0 || strings.HasPrefix(candidate, "-") {
			continue
		}
		return candidate
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) resolveLogRange(arguments []string) string {
	for _, argument := range arguments[1:] {
		candidate := strings.TrimSpace(argument)
		if strings.Contains(candidate, "..") {
			return candidate
		}
	}
	return ""
}

func (formatter CommandMessageFormatter) resolveTagName(arguments []string) string {
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		candidate := strings.TrimSpace(arguments[argumentIndex])
		if len(candidate) == 0 || strings.HasPrefix(candidate, "-") {
			continue
		}
		return candidate
	}
	return ""
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, target string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == target {
			return true
		}
	}
	return false
}
