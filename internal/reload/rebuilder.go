package reload

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Rebuilder produces a freshly built artifact. Implementations are opaque to
// the orchestrator; only the resulting artifact path matters.
type Rebuilder interface {
	// Rebuild runs one build and returns the artifact path on success.
	Rebuild(ctx context.Context) (string, error)
}

// RebuildFunc adapts a plain function to the Rebuilder interface.
type RebuildFunc func(ctx context.Context) (string, error)

// Rebuild calls f.
func (f RebuildFunc) Rebuild(ctx context.Context) (string, error) {
	return f(ctx)
}

// CommandRebuilder runs an external build command. If Artifact is set it is
// returned verbatim on success; otherwise the last non-empty line of the
// command's stdout is taken as the artifact path.
type CommandRebuilder struct {
	// Argv is the build command and its arguments.
	Argv []string

	// Dir is the working directory for the command. Empty means inherit.
	Dir string

	// Artifact optionally fixes the artifact path.
	Artifact string
}

// Rebuild runs the configured command.
func (r *CommandRebuilder) Rebuild(ctx context.Context) (string, error) {
	if len(r.Argv) == 0 {
		return "", fmt.Errorf("reload: rebuild command not configured")
	}

	cmd := exec.CommandContext(ctx, r.Argv[0], r.Argv[1:]...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("reload: rebuild command: %w: %s", err, msg)
		}
		return "", fmt.Errorf("reload: rebuild command: %w", err)
	}

	if r.Artifact != "" {
		return r.Artifact, nil
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	artifact := strings.TrimSpace(lines[len(lines)-1])
	if artifact == "" {
		return "", fmt.Errorf("reload: rebuild command produced no artifact path")
	}
	return artifact, nil
}
