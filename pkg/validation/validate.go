package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pagethread/pkg/models"
)

// Limits bound incoming comment payloads. Zero values fall back to the
// defaults below.
type Limits struct {
	MaxBodyBytes   int
	MaxAttachments int
	MaxNameLen     int
}

const (
	defaultMaxBodyBytes   = 64 * 1024
	defaultMaxAttachments = 16
	defaultMaxNameLen     = 255
)

var limits = Limits{}

// SetLimits installs limits from the effective config.
func SetLimits(l Limits) { limits = l }

func maxBodyBytes() int {
	if limits.MaxBodyBytes > 0 {
		return limits.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

func maxAttachments() int {
	if limits.MaxAttachments > 0 {
		return limits.MaxAttachments
	}
	return defaultMaxAttachments
}

func maxNameLen() int {
	if limits.MaxNameLen > 0 {
		return limits.MaxNameLen
	}
	return defaultMaxNameLen
}

// ValidateBody rejects bodies that are empty after trimming, oversized,
// or not valid UTF-8.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("body is required")
	}
	if len(body) > maxBodyBytes() {
		return fmt.Errorf("body exceeds %d bytes", maxBodyBytes())
	}
	if !utf8.ValidString(body) {
		return fmt.Errorf("body is not valid utf-8")
	}
	return nil
}

// ValidateAttachments checks attachment reference lists. References must
// already be uploaded, so an id and name are mandatory.
func ValidateAttachments(refs []models.Attachment) error {
	if len(refs) > maxAttachments() {
		return fmt.Errorf("too many attachments: %d > %d", len(refs), maxAttachments())
	}
	for i, a := range refs {
		if a.ID == "" {
			return fmt.Errorf("attachment %d: id is required", i)
		}
		if a.Name == "" || len(a.Name) > maxNameLen() {
			return fmt.Errorf("attachment %d: invalid name", i)
		}
		if a.Size < 0 {
			return fmt.Errorf("attachment %d: negative size", i)
		}
	}
	return nil
}

// ValidateComment applies both body and attachment checks to an incoming
// comment.
func ValidateComment(c models.Comment) error {
	if err := ValidateBody(c.Body); err != nil {
		return err
	}
	return ValidateAttachments(c.Attachments)
}
