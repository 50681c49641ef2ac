package verify

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/Laisky/errors/v2"
)

// EpubcheckEnv names the environment variable holding the path of an
// epubcheck.jar, used when no epubcheck executable is on PATH.
const EpubcheckEnv = "EPUBCHECK_PATH"

// Epubcheck validates the book at path with the external epubcheck tool
// and returns its output. A book epubcheck rejects yields an error
// wrapping ErrEpubCheck; ErrEpubCheckMissing means the tool is not
// installed.
func Epubcheck(ctx context.Context, path string) (string, error) {
	cmd, err := epubcheckCommand(ctx, path)
	if err != nil {
		return "", err
	}

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, errors.Wrapf(ErrEpubCheck, "%s: exit code %d\n%s", path, exitErr.ExitCode(), output)
		}
		return output, errors.Wrapf(err, "verify: run %s", cmd.Path)
	}
	return output, nil
}

func epubcheckCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	if exe, err := exec.LookPath("epubcheck"); err == nil {
		return exec.CommandContext(ctx, exe, "--quiet", path), nil
	}
	jar := os.Getenv(EpubcheckEnv)
	if jar == "" {
		return nil, ErrEpubCheckMissing
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return nil, errors.Wrapf(ErrEpubCheckMissing, "%s is set but java is not on PATH", EpubcheckEnv)
	}
	return exec.CommandContext(ctx, java, "-jar", jar, "--quiet", path), nil
}
