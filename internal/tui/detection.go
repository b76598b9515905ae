package tui

import (
	"os"

	"golang.org/x/term"
)

// EnvNoPrompt disables every prompt and spinner when set to a non-empty value.
const EnvNoPrompt = "MONOPUB_NO_PROMPT"

// ciEnvVars are set by the CI systems monopub releases are usually run from.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_HOME",
	"BUILDKITE",
	"BITBUCKET_BUILD_NUMBER",
	"DRONE",
	"SEMAPHORE",
	"APPVEYOR",
	"CODEBUILD_BUILD_ID",
	"TF_BUILD",
}

// isTerminalFn reports whether stdout is a terminal. Replaced in tests.
var isTerminalFn = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value
}

// IsInteractive reports whether prompts can be shown: stdout is a terminal,
// no CI system is detected and MONOPUB_NO_PROMPT is unset.
func IsInteractive() bool {
	if !isTerminalFn() {
		return false
	}
	if os.Getenv(EnvNoPrompt) != "" {
		return false
	}
	return CIName() == ""
}

// CIName returns the first CI environment variable that is set, or "".
func CIName() string {
	for _, env := range ciEnvVars {
		if os.Getenv(env) != "" {
			return env
		}
	}
	return ""
}
