// Package organizer buckets media files into year/month directories
// under their scan root. Capture dates come from embedded metadata
// (EXIF for images, container tags for video) with filesystem
// modification time as the fallback. Moves never overwrite an existing
// destination, and per-file failures do not stop a batch.
package organizer
