package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation tags request problems surfaced before a job is registered.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool tags ffmpeg spawn and runtime failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrTransient tags recoverable filesystem failures.
	ErrTransient = errors.New("transient failure")

	// ErrNoMainTrack indicates the timeline has no main track to linearize.
	ErrNoMainTrack = errors.New("no main track found")
	// ErrJobNotFound indicates the job id is not registered.
	ErrJobNotFound = errors.New("export job not found")
)

// MediaNotFoundError reports a clip referencing a media id absent from the library.
type MediaNotFoundError struct {
	AssetID string
}

func (e *MediaNotFoundError) Error() string {
	return fmt.Sprintf("media asset not found: %s", e.AssetID)
}

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "export failure"
	}
	return strings.Join(parts, ": ")
}
