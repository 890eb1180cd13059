// Package writer materializes crawled pages on the local file system.
//
// A DirSink is rooted at the workspace directory and accepts only paths
// that stay inside it. Files are written atomically (temporary file plus
// rename), so a concurrent reader sees either the previous content or the
// new content, never a partial file.
package writer
