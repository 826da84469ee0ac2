package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadManifestJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mods.json", `[
		{"name": "JEI", "filename": "jei-1.20.1.jar", "version": "10.2.1"},
		{"name": " Create ", "filename": "create-1.20.1-0.5.1.jar", "version": "0.5.1"}
	]`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(manifest.Mods) != 2 {
		t.Fatalf("expected 2 mods, got %d", len(manifest.Mods))
	}
	want := ModDescriptor{Name: "JEI", Filename: "jei-1.20.1.jar", Version: "10.2.1"}
	if manifest.Mods[0] != want {
		t.Fatalf("unexpected first mod %+v", manifest.Mods[0])
	}
	if manifest.Mods[1].Name != "Create" {
		t.Fatalf("expected trimmed name, got %q", manifest.Mods[1].Name)
	}
}

func TestLoadManifestYAMLAndTXT(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "mods.yaml", "- name: JEI\n  filename: jei-1.20.1.jar\n  version: 10.2.1\n")
	manifest, err := LoadManifest(yamlPath)
	if err != nil {
		t.Fatalf("yaml manifest: %v", err)
	}
	if len(manifest.Mods) != 1 || manifest.Mods[0].Filename != "jei-1.20.1.jar" {
		t.Fatalf("unexpected yaml mods %+v", manifest.Mods)
	}

	txtPath := writeFile(t, dir, "mods.txt", `[{"name": "JEI", "filename": "jei-1.20.1.jar"}]`)
	manifest, err = LoadManifest(txtPath)
	if err != nil {
		t.Fatalf("txt manifest: %v", err)
	}
	if len(manifest.Mods) != 1 {
		t.Fatalf("unexpected txt mods %+v", manifest.Mods)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"broken.json":    `[{"name": "JEI",`,
		"empty.json":     `[]`,
		"noname.json":    `[{"filename": "a.jar"}]`,
		"nofile.json":    `[{"name": "A"}]`,
		"traversal.json": `[{"name": "A", "filename": "../a.jar"}]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadManifest(writeFile(t, dir, name, content))
			var manifestErr *ManifestError
			if !errors.As(err, &manifestErr) {
				t.Fatalf("expected ManifestError, got %v", err)
			}
		})
	}
	_, err := LoadManifest(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadManifestDropsDuplicateFilenames(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mods.json", `[
		{"name": "JEI", "filename": "jei-1.20.1.jar"},
		{"name": "Just Enough Items", "filename": "jei-1.20.1.jar"}
	]`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(manifest.Mods) != 1 || manifest.Mods[0].Name != "JEI" {
		t.Fatalf("expected first entry kept, got %+v", manifest.Mods)
	}
	if len(manifest.Duplicates) != 1 || manifest.Duplicates[0].Name != "Just Enough Items" {
		t.Fatalf("expected duplicate reported, got %+v", manifest.Duplicates)
	}
}

func TestInferGameVersion(t *testing.T) {
	mods := []ModDescriptor{
		{Name: "JEI", Filename: "jei-1.20.1.jar"},
		{Name: "Create", Filename: "create-1.20.1-0.5.1.f.jar"},
		{Name: "Old", Filename: "oldmod-mc1.19.2.jar"},
	}
	version, inferred := InferGameVersion(mods, DefaultGameVersion)
	if !inferred || version != "1.20.1" {
		t.Fatalf("expected 1.20.1, got %q (inferred=%v)", version, inferred)
	}

	version, inferred = InferGameVersion([]ModDescriptor{{Filename: "jei-1.20.1.jar"}}, "x")
	if !inferred || version != "1.20.1" {
		t.Fatalf("expected 1.20.1 from a single file, got %q", version)
	}
}

func TestInferGameVersionTiesAndFallback(t *testing.T) {
	mods := []ModDescriptor{
		{Filename: "a-mc1.19.2.jar"},
		{Filename: "b-1.18.jar"},
	}
	version, _ := InferGameVersion(mods, DefaultGameVersion)
	if version != "1.19.2" {
		t.Fatalf("expected first seen version on tie, got %q", version)
	}

	version, inferred := InferGameVersion([]ModDescriptor{{Filename: "nothing.jar"}}, DefaultGameVersion)
	if inferred || version != DefaultGameVersion {
		t.Fatalf("expected fallback, got %q (inferred=%v)", version, inferred)
	}
}

func TestFindManifests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.json", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, "list.TXT", "")
	if err := os.Mkdir(filepath.Join(dir, "dir.json"), 0755); err != nil {
		t.Fatal(err)
	}
	files, err := FindManifests(dir)
	if err != nil {
		t.Fatalf("FindManifests returned error: %v", err)
	}
	want := []string{"a.json", "b.yaml", "list.TXT"}
	if len(files) != len(want) {
		t.Fatalf("got %v want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v want %v", files, want)
		}
	}
}
