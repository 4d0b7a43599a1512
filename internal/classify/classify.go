// Package classify maps object keys to content types via their file
// extension. The table mirrors the formats the downstream inference and
// conversion stages can actually handle.
package classify

import (
	"path"
	"strings"

	"ingester/internal/state"
)

var extensionToContentType = map[string]state.ContentType{
	"jpg":  state.ContentImage,
	"jpeg": state.ContentImage,
	"png":  state.ContentImage,
	"gif":  state.ContentImage,

	"mp3": state.ContentAudio,
	"wav": state.ContentAudio,

	"mp4": state.ContentVideo,

	"txt": state.ContentText,
}

// moderatableImageExtensions lists the image formats the moderation service
// accepts; gif images skip the moderation stage.
var moderatableImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Classify returns the content type for an object key along with the
// normalized (trimmed, lower-cased) extension it matched on. Keys without a
// recognized extension classify as Unknown with the extension still recorded.
func Classify(objectKey string) (state.ContentType, string) {
	ext := Extension(objectKey)
	if ext == "" {
		return state.ContentUnknown, ""
	}
	if ct, ok := extensionToContentType[ext]; ok {
		return ct, ext
	}
	return state.ContentUnknown, ext
}

// Extension returns the normalized file extension of an object key without
// the leading dot.
func Extension(objectKey string) string {
	ext := path.Ext(objectKey)
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Moderatable reports whether an image extension is supported by the
// synchronous moderation service.
func Moderatable(extension string) bool {
	_, ok := moderatableImageExtensions[strings.ToLower(strings.TrimSpace(extension))]
	return ok
}
