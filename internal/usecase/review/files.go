package review

import (
	"path"
	"strings"
)

// sourceExtensions are the file extensions eligible for test generation.
var sourceExtensions = map[string]bool{
	".go":    true,
	".ts":    true,
	".tsx":   true,
	".js":    true,
	".jsx":   true,
	".py":    true,
	".rb":    true,
	".java":  true,
	".kt":    true,
	".rs":    true,
	".c":     true,
	".cc":    true,
	".cpp":   true,
	".cs":    true,
	".swift": true,
}

// isSourceFile reports whether the path has a recognized source extension.
func isSourceFile(filename string) bool {
	return sourceExtensions[strings.ToLower(path.Ext(filename))]
}

// isTestFile reports whether the path looks like an existing test file across
// the common per-language conventions.
func isTestFile(filename string) bool {
	base := strings.ToLower(path.Base(filename))
	name := strings.TrimSuffix(base, path.Ext(base))

	switch {
	case strings.HasSuffix(name, "_test"),
		strings.HasSuffix(name, ".test"),
		strings.HasSuffix(name, ".spec"),
		strings.HasPrefix(name, "test_"):
		return true
	}

	for _, dir := range strings.Split(strings.ToLower(path.Dir(filename)), "/") {
		if dir == "test" || dir == "tests" || dir == "__tests__" {
			return true
		}
	}
	return false
}
