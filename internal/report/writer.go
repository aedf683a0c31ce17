package report

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteReportFile writes content to outputDir/name, creating the directory
// when missing, and returns the path written.
func WriteReportFile(outputDir, name, content string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, sanitizeFilename(name))
	return path, os.WriteFile(path, []byte(content), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}
