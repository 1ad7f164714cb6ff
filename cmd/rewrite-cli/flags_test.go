package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestBuildRewriterWithoutFlags tests that the CLI starts on defaults alone:
// missing default data files only warn.
func TestBuildRewriterWithoutFlags(t *testing.T) {
	rewriter, cleanup, err := buildRewriter(context.Background(), "", "", "", "")
	if err != nil {
		t.Fatalf("buildRewriter failed: %v", err)
	}
	defer cleanup()

	if rewriter == nil {
		t.Fatal("Expected non-nil rewriter")
	}
}

// TestBuildRewriterNonExistentDict tests that an explicit dictionary flag
// must point at a readable file.
func TestBuildRewriterNonExistentDict(t *testing.T) {
	dictPath := filepath.Join(t.TempDir(), "nonexistent.dict")

	_, _, err := buildRewriter(context.Background(), "", dictPath, "", "")
	if err == nil {
		t.Error("buildRewriter should fail with non-existent dict")
	}
}

// TestBuildRewriterNonExistentCities tests the same for the gazetteer flag.
func TestBuildRewriterNonExistentCities(t *testing.T) {
	citiesPath := filepath.Join(t.TempDir(), "nonexistent.txt")

	_, _, err := buildRewriter(context.Background(), "", "", citiesPath, "")
	if err == nil {
		t.Error("buildRewriter should fail with non-existent cities file")
	}
}

// TestBuildRewriterMalformedConfig tests that a broken config file is fatal.
func TestBuildRewriterMalformedConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("polish: {enabled: yes\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := buildRewriter(context.Background(), configPath, "", "", "")
	if err == nil {
		t.Error("buildRewriter should fail with malformed config")
	}
}

// TestBuildRewriterInvalidStorePath tests that an unopenable model store is
// reported instead of silently dropped.
func TestBuildRewriterInvalidStorePath(t *testing.T) {
	_, _, err := buildRewriter(context.Background(), "", "", "", "/nonexistent/directory/model.db")
	if err == nil {
		t.Error("buildRewriter should fail with invalid store path")
	}
}

// TestExecuteRewriteWithoutModel tests that a rewrite on a bare rewriter
// prints without crashing.
func TestExecuteRewriteWithoutModel(t *testing.T) {
	rewriter, cleanup, err := buildRewriter(context.Background(), "", "", "", "")
	if err != nil {
		t.Fatalf("buildRewriter failed: %v", err)
	}
	defer cleanup()

	executeRewrite(rewriter, "montering af lampe", 3, true)
	executeSpell(rewriter, "montering af lampe")
	executeModel(rewriter)
}
