package validator

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 128
	maxFileNameLen    = 255
	maxFolderNameLen  = 255
	maxContentTypeLen = 255
	maxDescriptionLen = 2048
	maxTagsLen        = 512
	maxFileSizeGB     = 100
	maxFileSizeBytes  = int64(100 * 1024 * 1024 * 1024)
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d characters"
	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNamePathSepFmt      = "file name cannot contain path separators"
	errFileNameControlFmt      = "file name cannot contain control characters"
	errFolderNameEmptyFmt      = "folder name cannot be empty"
	errFolderNameMaxLengthFmt  = "folder name must not exceed %d characters"
	errFolderNamePathSepFmt    = "folder name cannot contain path separators"
	errFolderNameControlFmt    = "folder name cannot contain control characters"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errFileSizeNegativeFmt     = "file size cannot be negative"
	errFileSizeMaxFmt          = "file size exceeds maximum of %dGB"
	errDescriptionMaxLenFmt    = "description must not exceed %d characters"
	errTagsMaxLengthFmt        = "tags must not exceed %d characters"
	errTagsControlFmt          = "tags cannot contain control characters"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf(errFileNamePathSepFmt)
	}

	if containsControlChars(name) {
		return fmt.Errorf(errFileNameControlFmt)
	}

	return nil
}

func FolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf(errFolderNameEmptyFmt)
	}

	if len(name) > maxFolderNameLen {
		return fmt.Errorf(errFolderNameMaxLengthFmt, maxFolderNameLen)
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf(errFolderNamePathSepFmt)
	}

	if containsControlChars(name) {
		return fmt.Errorf(errFolderNameControlFmt)
	}

	return nil
}

// SanitizeContentType parses and normalizes a MIME content type,
// stripping anything that does not parse as a valid media type.
func SanitizeContentType(contentType string) (string, error) {
	if contentType == "" {
		return "", nil
	}

	if len(contentType) > maxContentTypeLen {
		return "", fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf(errContentTypeInvalidFmt)
	}

	return mediaType, nil
}

func FileSize(size int64) error {
	if size < 0 {
		return fmt.Errorf(errFileSizeNegativeFmt)
	}

	if size > maxFileSizeBytes {
		return fmt.Errorf(errFileSizeMaxFmt, maxFileSizeGB)
	}

	return nil
}

func Description(description string) error {
	if len(description) > maxDescriptionLen {
		return fmt.Errorf(errDescriptionMaxLenFmt, maxDescriptionLen)
	}
	return nil
}

func Tags(tags string) error {
	if len(tags) > maxTagsLen {
		return fmt.Errorf(errTagsMaxLengthFmt, maxTagsLen)
	}

	if containsControlChars(tags) {
		return fmt.Errorf(errTagsControlFmt)
	}

	return nil
}

func containsControlChars(s string) bool {
	for _, r := range s {
		if r < asciiControlStart || r == asciiDelete {
			return true
		}
	}
	return false
}
