// Package ffprobe shells out to ffprobe and decodes its JSON inspection
// output, including the container tags the organizer reads capture dates
// from.
package ffprobe
