// Package encode converts audio and video files by driving ffmpeg.
// Video jobs walk an ordered encoder candidate list, hardware first with
// a guaranteed software tail, advancing on failure; audio jobs map the
// target container to its codec directly. Jobs record the encoder that
// finally produced output.
package encode
