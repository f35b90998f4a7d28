package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"src/app.ts", true},
		{"Component.TSX", true},
		{"scripts/build.py", true},
		{"README.md", false},
		{"config.yaml", false},
		{"Dockerfile", false},
		{"image.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isSourceFile(tt.path))
		})
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main_test.go", true},
		{"src/app.test.ts", true},
		{"src/app.spec.js", true},
		{"test_utils.py", true},
		{"tests/helper.go", true},
		{"src/__tests__/app.js", true},
		{"main.go", false},
		{"contested.go", false},
		{"src/app.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isTestFile(tt.path))
		})
	}
}
