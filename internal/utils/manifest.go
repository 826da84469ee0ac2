package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type Manifest struct {
	Path       string
	Mods       []ModDescriptor
	Duplicates []ModDescriptor // dropped entries sharing a filename with an earlier one
}

// LoadManifest reads a JSON or YAML list of mods. Files ending in .txt are
// read as JSON.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	var mods []ModDescriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &mods)
	default:
		err = json.Unmarshal(data, &mods)
	}
	if err != nil {
		return nil, &ManifestError{Path: path, Err: fmt.Errorf("error parsing file: %w", err)}
	}
	if len(mods) == 0 {
		return nil, &ManifestError{Path: path, Err: errors.New("no mods listed")}
	}
	manifest := &Manifest{Path: path}
	seen := make(map[string]bool, len(mods))
	for i, mod := range mods {
		mod.Name = strings.TrimSpace(mod.Name)
		mod.Filename = strings.TrimSpace(mod.Filename)
		mod.Version = strings.TrimSpace(mod.Version)
		if err := validateDescriptor(mod); err != nil {
			return nil, &ManifestError{Path: path, Err: fmt.Errorf("entry %d: %w", i+1, err)}
		}
		if seen[mod.Filename] {
			manifest.Duplicates = append(manifest.Duplicates, mod)
			continue
		}
		seen[mod.Filename] = true
		manifest.Mods = append(manifest.Mods, mod)
	}
	return manifest, nil
}

func validateDescriptor(mod ModDescriptor) error {
	if mod.Name == "" {
		return errors.New("missing name")
	}
	if mod.Filename == "" {
		return fmt.Errorf("missing filename for %q", mod.Name)
	}
	if mod.Filename == "." || mod.Filename == ".." || strings.ContainsAny(mod.Filename, `/\`) {
		return fmt.Errorf("filename %q for %q must be a bare file name", mod.Filename, mod.Name)
	}
	return nil
}

// FindManifests lists candidate manifest files in dir, sorted by name.
func FindManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(ManifestExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// InferGameVersion picks the game version found most often across all
// filenames. Ties go to the version seen first. The boolean is false when no
// filename carried a version and fallback was returned.
func InferGameVersion(mods []ModDescriptor, fallback string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, mod := range mods {
		for _, match := range GameVersionRegex.FindAllStringSubmatch(mod.Filename, -1) {
			v := match[1]
			if counts[v] == 0 {
				order = append(order, v)
			}
			counts[v]++
		}
	}
	if len(order) == 0 {
		return fallback, false
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}
