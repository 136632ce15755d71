// Package logging provides the leveled logger used across the photo index
// service and CLI.
//
// Levels are DEBUG, INFO, WARN, ERROR and FATAL. The level comes from the
// LOG_LEVEL environment variable (DEBUG=true forces debug). Output goes to
// stderr and, when EnableFile is called, also to a size-rotated log file.
package logging
