package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePathValidator checks and normalizes filesystem paths before the
// app reads or writes them.
type FilePathValidator struct {
	// AllowedBaseDirs restricts file operations to specific base directories
	AllowedBaseDirs []string
	// AllowHomeExpansion determines if tilde expansion is permitted
	AllowHomeExpansion bool
	// AllowRelativePaths determines if relative paths are permitted
	AllowRelativePaths bool
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
}

// NewFilePathValidator creates a validator with secure defaults. The
// allowed directories cover everything the app writes on its own:
// state, config, and scratch space.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".quire"),
			filepath.Join(homeDir, ".config", "quire"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		AllowRelativePaths: false,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator creates a validator without directory
// restrictions, for paths the user hands us explicitly.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowedBaseDirs:    []string{},
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize validates and normalizes a file path
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}

	if err := v.validateCharacters(path); err != nil {
		return "", err
	}

	normalizedPath, err := v.normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}

	if err := v.validateTraversal(normalizedPath); err != nil {
		return "", err
	}

	if err := v.validateBaseDirs(normalizedPath); err != nil {
		return "", err
	}

	return normalizedPath, nil
}

// validateCharacters checks for dangerous characters in the path
func (v *FilePathValidator) validateCharacters(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}

	for _, char := range path {
		if char < 32 && char != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}

	dangerous := []string{
		"../",  // Directory traversal
		"..\\", // Windows directory traversal
		"./",   // Current directory reference
		"//",   // Double slashes (UNC paths on Windows)
		"\\\\", // UNC paths
	}

	lowerPath := strings.ToLower(path)
	for _, seq := range dangerous {
		if strings.Contains(lowerPath, seq) {
			return fmt.Errorf("path contains dangerous sequence: %s", seq)
		}
	}

	return nil
}

// normalizePath expands the home directory and makes the path absolute
func (v *FilePathValidator) normalizePath(path string) (string, error) {
	if v.AllowHomeExpansion && len(path) >= 2 && path[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
	}

	if !v.AllowRelativePaths && !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = absPath
	}

	cleanPath := filepath.Clean(path)

	if cleanPath != path && strings.Contains(path, "..") {
		return "", fmt.Errorf("path contains directory traversal after normalization")
	}

	return cleanPath, nil
}

// validateTraversal ensures the path doesn't attempt directory traversal
func (v *FilePathValidator) validateTraversal(path string) error {
	components := strings.Split(filepath.ToSlash(path), "/")
	for _, component := range components {
		if component == ".." {
			return fmt.Errorf("directory traversal not allowed")
		}
		if component == "." && !v.AllowRelativePaths {
			return fmt.Errorf("relative path components not allowed")
		}
	}
	return nil
}

// validateBaseDirs ensures the path is within allowed base directories
func (v *FilePathValidator) validateBaseDirs(path string) error {
	// No restrictions configured means any directory is fine.
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}

	absPath := path
	if !filepath.IsAbs(path) {
		var err error
		absPath, err = filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("cannot resolve absolute path: %w", err)
		}
	}

	for _, baseDir := range v.AllowedBaseDirs {
		absBaseDir, err := filepath.Abs(baseDir)
		if err != nil {
			continue
		}

		relPath, err := filepath.Rel(absBaseDir, absPath)
		if err != nil {
			continue
		}

		if !strings.HasPrefix(relPath, "..") {
			return nil
		}
	}

	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateDirectory ensures a directory path is safe and creates it if necessary
func (v *FilePathValidator) ValidateDirectory(path string, createIfNotExist bool) (string, error) {
	validatedPath, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validatedPath)
	if err != nil {
		if os.IsNotExist(err) {
			if createIfNotExist {
				if mkErr := os.MkdirAll(validatedPath, 0o755); mkErr != nil {
					return "", fmt.Errorf("failed to create directory: %w", mkErr)
				}
			} else {
				// Missing is fine for parent directory checks.
				return validatedPath, nil
			}
		} else {
			return "", fmt.Errorf("checking directory: %w", err)
		}
	} else {
		if !info.IsDir() {
			return "", fmt.Errorf("path exists but is not a directory: %s", validatedPath)
		}
	}

	return validatedPath, nil
}

// ValidateFile ensures a file path is safe for read/write operations
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validatedPath, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	parentDir := filepath.Dir(validatedPath)
	if err := v.validateBaseDirs(parentDir); err != nil {
		return "", fmt.Errorf("parent directory not allowed: %w", err)
	}

	if info, err := os.Stat(validatedPath); err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("path is a directory, not a file: %s", validatedPath)
		}
	}

	return validatedPath, nil
}

// IsPathSafe performs a quick safety check on a path without full validation
func IsPathSafe(path string) bool {
	if strings.Contains(path, "\x00") {
		return false
	}
	if strings.Contains(path, "../") || strings.Contains(path, "..\\") {
		return false
	}
	if len(path) > 4096 {
		return false
	}
	return true
}
