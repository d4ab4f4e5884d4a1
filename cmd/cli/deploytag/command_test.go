package deploytag_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/deploykit/deploytag/cmd/cli/deploytag"
	"github.com/deploykit/deploytag/internal/execshell"
	flagutils "github.com/deploykit/deploytag/internal/utils/flags"
)

type scriptedGitExecutor struct {
	tagListing  string
	logOutput   string
	tagCommands [][]string
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	arguments := details.Arguments
	switch arguments[0] {
	case "rev-parse":
		if arguments[1] == "--is-inside-work-tree" {
			return execshell.ExecutionResult{StandardOutput: "true\n"}, nil
		}
		if arguments[1] == "--verify" && arguments[2] == "--quiet" {
			return execshell.ExecutionResult{}, execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
				Result:  execshell.ExecutionResult{ExitCode: 1},
			}
		}
		return execshell.ExecutionResult{StandardOutput: "abc123\n"}, nil
	case "for-each-ref":
		return execshell.ExecutionResult{StandardOutput: executor.tagListing}, nil
	case "merge-base":
		return execshell.ExecutionResult{StandardOutput: "base123\n"}, nil
	case "log":
		return execshell.ExecutionResult{StandardOutput: executor.logOutput}, nil
	case "tag":
		executor.tagCommands = append(executor.tagCommands, arguments)
		return execshell.ExecutionResult{}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

type staticAuthorResolver struct {
	authors []string
}

func (resolver staticAuthorResolver) ResolveAuthors(context.Context, string, string) ([]string, error) {
	return resolver.authors, nil
}

func buildTestCommand(testInstance *testing.T, builder *deploytag.CommandBuilder) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()

	tagCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	rootCommand := &cobra.Command{Use: "deploytag", SilenceUsage: true, SilenceErrors: true}
	rootCommand.AddCommand(tagCommand)
	flagutils.BindExecutionFlags(rootCommand, flagutils.ExecutionDefaults{})

	outputBuffer := &bytes.Buffer{}
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetContext(context.Background())

	return rootCommand, outputBuffer
}

func TestTagCommandCreatesTagAndEmitsReport(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		tagListing: "v2.20240101T000000.1\x1f1704067200\n",
		logOutput:  "c1\x1fa@x.com\x1ffeat: add widget\n\x1e\n",
	}
	workingDirectory := testInstance.TempDir()
	reportPath := filepath.Join(workingDirectory, "report.txt")

	builder := &deploytag.CommandBuilder{
		GitExecutor:      executor,
		AuthorResolver:   staticAuthorResolver{authors: []string{"amir", "zoe"}},
		WorkingDirectory: workingDirectory,
	}
	rootCommand, outputBuffer := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{
		"tag",
		"--deploy-id", "7",
		"--deploy-time", "2024-01-03T00:00:00Z",
		"--output", reportPath,
	})

	require.NoError(testInstance, rootCommand.Execute())

	require.Len(testInstance, executor.tagCommands, 1)
	require.Equal(testInstance, "v2.20240103T000000.7", executor.tagCommands[0][2])

	notesPath := filepath.Join(workingDirectory, "release_notes-v2.20240103T000000.7.txt")
	writtenNotes, readError := os.ReadFile(notesPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(writtenNotes), "Changes since v2.20240101T000000.1 (2 days, 0:00:00 ago):")
	require.Contains(testInstance, string(writtenNotes), "  - add widget (a@x.com)")

	expectedReport := strings.Join([]string{
		"tag_name=v2.20240103T000000.7",
		"release_body_path=" + notesPath,
		"commit_authors=amir,zoe",
	}, "\n") + "\n"
	require.Equal(testInstance, expectedReport, outputBuffer.String())

	reportContents, reportReadError := os.ReadFile(reportPath)
	require.NoError(testInstance, reportReadError)
	require.Equal(testInstance, expectedReport, string(reportContents))
}

func TestTagCommandAcceptsUnixDeployTime(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	builder := &deploytag.CommandBuilder{GitExecutor: executor, WorkingDirectory: testInstance.TempDir()}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag", "--deploy-id", "3", "--deploy-time", "1704240000"})

	require.NoError(testInstance, rootCommand.Execute())
	require.Len(testInstance, executor.tagCommands, 1)
	require.Equal(testInstance, "v2.20240103T000000.3", executor.tagCommands[0][2])
}

func TestTagCommandHonorsWorkingDirectoryFlag(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	workingDirectory := testInstance.TempDir()
	builder := &deploytag.CommandBuilder{GitExecutor: executor}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{
		"tag",
		"--deploy-id", "5",
		"--deploy-time", "2024-01-03T00:00:00Z",
		"--working-directory", workingDirectory,
	})

	require.NoError(testInstance, rootCommand.Execute())
	require.Len(testInstance, executor.tagCommands, 1)

	_, statError := os.Stat(filepath.Join(workingDirectory, "release_notes-v2.20240103T000000.5.txt"))
	require.NoError(testInstance, statError)
}

func TestTagCommandDefaultsDeployTimeToCurrentTime(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	builder := &deploytag.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: testInstance.TempDir(),
		CurrentTimeProvider: func() time.Time {
			return time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
		},
	}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag", "--deploy-id", "6"})

	require.NoError(testInstance, rootCommand.Execute())
	require.Len(testInstance, executor.tagCommands, 1)
	require.Equal(testInstance, "v2.20240103T000000.6", executor.tagCommands[0][2])
}

func TestTagCommandHonorsDryRunFlag(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	workingDirectory := testInstance.TempDir()
	builder := &deploytag.CommandBuilder{GitExecutor: executor, WorkingDirectory: workingDirectory}
	rootCommand, outputBuffer := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag", "--deploy-id", "9", "--deploy-time", "2024-01-03T00:00:00Z", "--dry-run"})

	require.NoError(testInstance, rootCommand.Execute())
	require.Empty(testInstance, executor.tagCommands)
	require.Contains(testInstance, outputBuffer.String(), "tag_name=v2.20240103T000000.9")

	_, statError := os.Stat(filepath.Join(workingDirectory, "release_notes-v2.20240103T000000.9.txt"))
	require.NoError(testInstance, statError)
}

func TestTagCommandRequiresDeployIdentifier(testInstance *testing.T) {
	builder := &deploytag.CommandBuilder{GitExecutor: &scriptedGitExecutor{}, WorkingDirectory: testInstance.TempDir()}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag"})

	require.ErrorContains(testInstance, rootCommand.Execute(), "deploy identifier is required")
}

func TestTagCommandRejectsMalformedDeployTime(testInstance *testing.T) {
	builder := &deploytag.CommandBuilder{GitExecutor: &scriptedGitExecutor{}, WorkingDirectory: testInstance.TempDir()}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag", "--deploy-id", "4", "--deploy-time", "yesterday"})

	require.ErrorContains(testInstance, rootCommand.Execute(), "unable to parse deployment time")
}

func TestTagCommandOverridesConfigurationWithFlags(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	builder := &deploytag.CommandBuilder{
		GitExecutor:      executor,
		WorkingDirectory: testInstance.TempDir(),
		ConfigurationProvider: func() deploytag.CommandConfiguration {
			return deploytag.CommandConfiguration{TagPrefix: "release.", TimestampFormat: "%Y"}
		},
	}
	rootCommand, _ := buildTestCommand(testInstance, builder)
	rootCommand.SetArgs([]string{"tag", "--deploy-id", "2", "--deploy-time", "2024-01-03T00:00:00Z", "--tag-prefix", "prod.", "--time-format", "%Y-%m-%d"})

	require.NoError(testInstance, rootCommand.Execute())
	require.Len(testInstance, executor.tagCommands, 1)
	require.Equal(testInstance, "prod.2024-01-03.2", executor.tagCommands[0][2])
}
