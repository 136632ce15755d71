// Package watcher adds photos to the index as they appear in the media
// directory.
//
// It watches every non-hidden directory under the media root with fsnotify.
// Created and written indexable files are collected and, once the tree has
// been quiet for the debounce interval, handed to the index builder's ingest
// path. New directories are watched as they are created. Files that arrive
// while a full build is running are held until it finishes.
package watcher
