package encode

import (
	"reel/internal/gpu"
	"reel/internal/media/formats"
)

// videoArgs assembles the ffmpeg argument list for one video encoder
// attempt. Quality arguments differ between hardware and software
// encoders, so they depend on the candidate, not just the job.
func videoArgs(job *Job, candidate gpu.Candidate) []string {
	args := []string{"-i", job.SourcePath, "-c:v", candidate.Encoder, "-c:a", job.AudioCodec}
	args = append(args, formats.VideoQualityArgs(job.Tier, candidate.Hardware)...)
	if job.Framerate != "" && job.Framerate != "source" {
		args = append(args, "-r", job.Framerate)
	}
	if job.PreserveMetadata {
		args = append(args, "-map_metadata", "0")
	}
	return append(args, "-y", job.OutputPath())
}

// audioArgs assembles the ffmpeg argument list for an audio conversion.
// Lossless targets never get a bitrate cap.
func audioArgs(job *Job) []string {
	args := []string{"-i", job.SourcePath, "-c:a", job.AudioCodec}
	if !formats.Lossless(job.TargetFormat) {
		if bitrate := formats.AudioBitrate(job.Tier); bitrate != "" {
			args = append(args, "-b:a", bitrate)
		}
	}
	if job.PreserveMetadata {
		args = append(args, "-map_metadata", "0")
	}
	return append(args, "-y", job.OutputPath())
}
