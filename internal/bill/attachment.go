package bill

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// InvalidAttachmentMessage is shown to the employee when a receipt file is refused
const InvalidAttachmentMessage = "Seuls les fichiers avec les extensions jpg, jpeg, png ou webp sont autorisés."

// ErrInvalidAttachment is returned when a receipt file has a refused extension
var ErrInvalidAttachment = errors.New(InvalidAttachmentMessage)

var attachmentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ValidateAttachment reports whether fileName has an accepted receipt
// extension (jpg, jpeg, png or webp, any case)
func ValidateAttachment(fileName string) bool {
	_, ok := attachmentTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// AttachmentContentType returns the MIME type for an accepted receipt file,
// or application/octet-stream
func AttachmentContentType(fileName string) string {
	if ct, ok := attachmentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName strips special characters from a receipt file name and
// truncates long phone-generated names. The extension is kept, lowercased.
func SanitizeFileName(fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(filepath.Base(fileName), ext)

	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(spaceRuns.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + strings.ToLower(ext)
}
