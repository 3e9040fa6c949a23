package reload

import (
	"context"
	"testing"
)

func TestCommandRebuilder_ArtifactFromStdout(t *testing.T) {
	rb := &CommandRebuilder{
		Argv: []string{"sh", "-c", "echo compiling >&2; echo /tmp/out.dylib"},
	}

	artifact, err := rb.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if artifact != "/tmp/out.dylib" {
		t.Errorf("artifact = %q, want /tmp/out.dylib", artifact)
	}
}

func TestCommandRebuilder_FixedArtifact(t *testing.T) {
	rb := &CommandRebuilder{
		Argv:     []string{"true"},
		Artifact: "/build/lib.dylib",
	}

	artifact, err := rb.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if artifact != "/build/lib.dylib" {
		t.Errorf("artifact = %q, want /build/lib.dylib", artifact)
	}
}

func TestCommandRebuilder_CommandFails(t *testing.T) {
	rb := &CommandRebuilder{
		Argv: []string{"sh", "-c", "echo broken >&2; exit 1"},
	}

	if _, err := rb.Rebuild(context.Background()); err == nil {
		t.Fatal("Rebuild should fail when the command exits nonzero")
	}
}

func TestCommandRebuilder_NoOutputNoArtifact(t *testing.T) {
	rb := &CommandRebuilder{
		Argv: []string{"true"},
	}

	if _, err := rb.Rebuild(context.Background()); err == nil {
		t.Fatal("Rebuild should fail when no artifact path is produced")
	}
}

func TestCommandRebuilder_Unconfigured(t *testing.T) {
	rb := &CommandRebuilder{}
	if _, err := rb.Rebuild(context.Background()); err == nil {
		t.Fatal("Rebuild should fail without a command")
	}
}
