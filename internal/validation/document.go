package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentValidator checks paths the user asks the viewer to open.
// Documents can live anywhere on disk, so there is no base directory
// restriction; the checks are about the file itself.
type DocumentValidator struct {
	// AllowedExtensions lists acceptable file extensions, lowercase with
	// the leading dot. Empty means any extension.
	AllowedExtensions []string
	// MaxSizeBytes rejects files larger than this. Zero means no limit.
	MaxSizeBytes int64
}

// NewDocumentValidator creates a validator for the formats the viewer
// can actually render.
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{
		AllowedExtensions: []string{".pdf"},
		MaxSizeBytes:      2 << 30,
	}
}

// NewPermissiveDocumentValidator accepts any readable file, for
// development and tests.
func NewPermissiveDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// ValidateAndResolve checks a document path and returns it in absolute,
// cleaned form. The file must exist and be a regular file.
func (v *DocumentValidator) ValidateAndResolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("document path cannot be empty")
	}
	if !IsPathSafe(path) {
		return "", fmt.Errorf("document path contains unsafe sequences")
	}

	if len(path) >= 2 && path[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve document path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	if err := v.validateExtension(absPath); err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("document does not exist: %s", absPath)
		}
		return "", fmt.Errorf("checking document: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a document: %s", absPath)
	}
	if v.MaxSizeBytes > 0 && info.Size() > v.MaxSizeBytes {
		return "", fmt.Errorf("document too large (%d bytes, max %d)", info.Size(), v.MaxSizeBytes)
	}

	return absPath, nil
}

func (v *DocumentValidator) validateExtension(path string) error {
	if len(v.AllowedExtensions) == 0 {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range v.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported document type %q (want one of %v)", ext, v.AllowedExtensions)
}
