package mediatypes

import (
	"path"
	"strings"
)

// SidecarPrefix marks AppleDouble resource-fork files ("._IMG_0001.JPG")
// that sit next to real photos on volumes written by macOS.
const SidecarPrefix = "._"

// ContentTypeWebP is the MIME type of rendered display images.
const ContentTypeWebP = "image/webp"

// IndexableExtensions maps lowercase file extensions to whether the index
// builder accepts them.
var IndexableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".heif": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": ContentTypeWebP,
	".heic": "image/heic",
	".heif": "image/heif",
	".json": "application/json",
}

// Ext returns the lowercase extension of name, including the leading dot.
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

// IsHidden reports whether a base name is a dotfile or a sidecar file.
func IsHidden(base string) bool {
	return strings.HasPrefix(base, ".")
}

// IsSidecar reports whether a base name is a "._" resource-fork file.
func IsSidecar(base string) bool {
	return strings.HasPrefix(base, SidecarPrefix)
}

// IsIndexable reports whether a file with the given base name should be
// indexed: not hidden, not a sidecar, and with an accepted extension.
func IsIndexable(base string) bool {
	if IsHidden(base) || IsSidecar(base) {
		return false
	}
	return IndexableExtensions[Ext(base)]
}

// IsHEIF reports whether the extension is a HEIC/HEIF container, which the
// pure Go decoders cannot read.
func IsHEIF(ext string) bool {
	return ext == ".heic" || ext == ".heif"
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
