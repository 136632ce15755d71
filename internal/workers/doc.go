/*
Package workers sizes the worker pools used by photo-index.

# Overview

In a container the number of usable CPUs may be limited by cgroup
constraints. runtime.NumCPU reports the host count while GOMAXPROCS follows
the container limit, so pool sizes are derived from GOMAXPROCS:

	// Wrong: returns 64 on a 64-core node with a 2 CPU limit
	workers := runtime.NumCPU()

	// Correct: returns 2
	workers := runtime.GOMAXPROCS(0)

# Pools

	// Index builder: exiftool, geocoder and face detector calls (2 per CPU)
	n := workers.ForIndex(16)

	// Display renditions: decode, rotate, resize, WEBP encode (1 per CPU)
	n := workers.ForRender(8)

# Environment Variable Override

Each pool has its own override:

	INDEX_WORKERS=4     # index builder
	RENDER_WORKERS=2    # cache warm-up

Values that are not positive integers are ignored. The limit passed by the
caller still applies.
*/
package workers
