// Package logtail reads the newest entries of galley's log file.
//
// The log is written by a slog text handler, one record per line:
//
//	time=2026-03-01T12:00:00.000Z level=WARN msg="list recipes" component=ui error="..."
//
// Read keeps a ring buffer of maxLines, so memory is bounded by the number of
// lines requested rather than the file size, and returns lines oldest first.
// Records below the requested level are skipped. A missing log file is not an
// error.
package logtail
