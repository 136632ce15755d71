// Package faces is a client for the external face detection service.
//
// The service accepts an image as multipart form data on POST /detect and
// answers with one record per detected face: bounding box, optional eye
// coordinates and a confidence score. Detection forcing is always disabled
// so an image without faces yields an empty list rather than an error.
package faces
