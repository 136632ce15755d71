// Package media renders and caches the display images served to clients.
//
// A DisplayCache reads originals from an object store, rotates them by the
// angle recorded in the photo index, scales them to a fixed width and stores
// the encoded result under a namespace chosen by that angle:
//
//	<cache>/unrotated/<filename>.webp   angle 0
//	<cache>/rotated/<filename>.webp     any other angle
//
// Decoding uses the Go image decoders (with golang.org/x/image/webp) and
// falls back to libvips for HEIC/HEIF. Encoding to WEBP goes through libvips;
// call InitVips once at startup.
package media
