package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

const MaxFileSize = 50 * 1024 * 1024

var AllowedExtensions = []string{
	".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif",
	".txt", ".xlsx", ".xls", ".ppt", ".pptx",
}

var (
	ErrFileType     = errors.New("file type not allowed")
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrFileEmpty    = errors.New("file is empty")
)

// DecodeUpload turns submitted base64 content, optionally a data URL, into
// bytes after checking the extension and size.
func DecodeUpload(name, content string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(AllowedExtensions, ext) {
		return nil, fmt.Errorf("%w: %q", ErrFileType, ext)
	}

	if strings.HasPrefix(content, "data:") {
		if _, payload, ok := strings.Cut(content, ","); ok {
			content = payload
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrFileEmpty
	}
	if base64.StdEncoding.DecodedLen(len(content)) > MaxFileSize+3 {
		return nil, ErrFileTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("invalid file content: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
