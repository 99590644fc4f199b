package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Getwd returns the application's root directory, walking up from the
// current working directory until a go.mod (or config dir) is found.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("core.Getwd: %v", err)
	}
	for dir := wd; dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
	}
	return wd
}

// CleanString trims leading and trailing whitespace and optionally lowercases.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}
