package scanner

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ExcludedDirs are directories to skip during scanning
var ExcludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Scanner finds reviewable documents in a directory tree
type Scanner struct {
	logger *log.Logger
}

// New creates a new Scanner
func New(logger *log.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// FindDocuments recursively finds all .docx files under rootPath, skipping
// hidden directories and Word lock files (~$...).
func (s *Scanner) FindDocuments(rootPath string) ([]string, error) {
	var docs []string

	err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we can't access
		}

		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != rootPath {
				return filepath.SkipDir
			}
			if ExcludedDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		// Word drops ~$ lock files next to open documents
		if strings.HasPrefix(name, "~$") {
			return nil
		}

		if strings.EqualFold(filepath.Ext(name), ".docx") {
			docs = append(docs, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return docs, nil
}
