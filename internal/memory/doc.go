// Package memory configures the Go memory limit for containers and applies
// backpressure to rendition work.
//
// Decoding originals and encoding WEBP renditions are the memory heavy parts
// of photo-index, and libvips allocates outside the Go heap. ConfigureFromEnv
// therefore leaves headroom below the container limit:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//	- name: MEMORY_RATIO
//	  value: "0.8"
//
// A Monitor samples heap usage and makes Wait block while usage stays above
// the pause mark, until it drops below the resume mark. The display cache
// waits on it before every warm-up render.
package memory
