package apl

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadRotation loads a rotation file relative to baseDir, resolving imports.
// Imported rotations are prepended to the default list and their named lists
// are merged in import order.
func LoadRotation(baseDir, relPath string) (*File, error) {
	seen := map[string]bool{}
	return loadRecursive(baseDir, relPath, seen)
}

func loadRecursive(baseDir, relPath string, seen map[string]bool) (*File, error) {
	normalized := filepath.Clean(relPath)
	if seen[normalized] {
		return nil, fmt.Errorf("rotation import cycle detected at %s", normalized)
	}
	seen[normalized] = true

	fullPath := filepath.Join(baseDir, normalized)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}

	// Resolve imports depth-first.
	var rotation []ActionDefinition
	var lists []ListDefinition
	for _, imp := range file.Imports {
		child, err := loadRecursive(baseDir, imp, seen)
		if err != nil {
			return nil, err
		}
		rotation = append(rotation, child.Rotation...)
		lists = append(lists, child.Lists...)
		for k, v := range child.Variables {
			if file.Variables == nil {
				file.Variables = map[string]any{}
			}
			if _, ok := file.Variables[k]; !ok {
				file.Variables[k] = v
			}
		}
	}
	file.Rotation = append(rotation, file.Rotation...)
	file.Lists = append(lists, file.Lists...)

	seen[normalized] = false
	return file, nil
}
