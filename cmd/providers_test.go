package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tanq16/forgemods/internal/config"
	"github.com/tanq16/forgemods/internal/utils"
)

func manifestDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSelectManifest(t *testing.T) {
	dir := manifestDir(t, "b.yaml", "a.json", "readme.md")
	cases := []struct {
		input string
		want  string
	}{
		{"1\n", "a.json"},
		{"abc\n9\n2\n", "b.yaml"},
		{"q\n", ""},
		{"", ""},
		{"2", "b.yaml"},
	}
	for _, tc := range cases {
		got, err := selectManifest(dir, strings.NewReader(tc.input))
		if err != nil {
			t.Fatalf("input %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("input %q: got %q want %q", tc.input, got, tc.want)
		}
	}
}

func TestSelectManifestEmptyDir(t *testing.T) {
	if _, err := selectManifest(manifestDir(t, "notes.md"), strings.NewReader("1\n")); err == nil {
		t.Fatal("expected error when no manifest is present")
	}
}

type stubProvider struct {
	name string
	ref  utils.FileRef
	err  error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Resolve(context.Context, utils.ModDescriptor, string) (utils.FileRef, error) {
	return s.ref, s.err
}

func (s stubProvider) Fetch(context.Context, utils.FileRef, string) error {
	return errors.New("not used")
}

func TestResolveAll(t *testing.T) {
	providers := []utils.Provider{
		stubProvider{name: "Modrinth", err: utils.NotFoundf("no project")},
		stubProvider{name: "CurseForge", ref: utils.FileRef{FileName: "jei.jar", URL: "https://example.invalid/jei.jar", Size: 2048}},
		stubProvider{name: "Broken", err: &utils.TransportError{Op: "search", StatusCode: 502}},
	}
	rows := resolveAll(context.Background(), providers, utils.ModDescriptor{Name: "JEI"}, "1.20.1")
	if len(rows) != 3 {
		t.Fatalf("expected a row per provider, got %d", len(rows))
	}
	if !strings.Contains(rows[0][1], "not found") || rows[0][2] != "" {
		t.Fatalf("unexpected not-found row %v", rows[0])
	}
	if !strings.Contains(rows[1][1], "found") || rows[1][2] != "jei.jar" || rows[1][3] != "2.0 kB" {
		t.Fatalf("unexpected found row %v", rows[1])
	}
	if !strings.Contains(rows[2][1], "error") {
		t.Fatalf("unexpected error row %v", rows[2])
	}
}

func TestBuildProvidersOrder(t *testing.T) {
	providers := buildProviders(config.Default())
	if len(providers) != 2 || providers[0].Name() != "Modrinth" || providers[1].Name() != "CurseForge" {
		t.Fatalf("unexpected provider order")
	}
}
