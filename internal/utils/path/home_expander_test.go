package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/deploykit/deploytag/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidatePath: "~/reports/output.txt", expectedPath: filepath.Join(testHomeDirectoryConstant, "reports", "output.txt")},
		{name: "absolute_path_untouched", candidatePath: "/var/log/report.txt", expectedPath: "/var/log/report.txt"},
		{name: "embedded_tilde_untouched", candidatePath: "reports/~backup", expectedPath: "reports/~backup"},
		{name: "empty_path", candidatePath: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderKeepsPathWhenHomeUnavailable(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})

	require.Equal(testInstance, "~/reports/output.txt", expander.Expand("~/reports/output.txt"))
}
