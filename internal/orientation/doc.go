// Package orientation infers how far a photo must be rotated to be upright,
// using the geometry of the faces a detector finds in it.
//
// Each confident face casts one vote: 0 when its eye line is near horizontal,
// +90 or -90 when the eye line is near vertical (the side is chosen by where
// the eyes sit inside the face box), and 90 for eyeless faces whose box is
// clearly wider than tall. The most frequent vote wins. Ties are broken in
// favour of 0, then the smaller magnitude, then the positive value, so the
// result never depends on map or slice ordering.
//
// 180 degrees is never inferred.
package orientation
