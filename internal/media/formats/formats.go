package formats

import (
	"strings"
)

// Kind classifies a media file by its payload type.
type Kind int

const (
	KindUnknown Kind = iota
	KindAudio
	KindVideo
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// ParseKind maps a user-supplied kind label to a Kind.
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "audio":
		return KindAudio, true
	case "video":
		return KindVideo, true
	case "image":
		return KindImage, true
	default:
		return KindUnknown, false
	}
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".flac": {}, ".aac": {}, ".ogg": {}, ".oga": {},
	".m4a": {}, ".wma": {}, ".opus": {}, ".aiff": {}, ".aif": {}, ".alac": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".wmv": {}, ".flv": {},
	".webm": {}, ".m4v": {}, ".3gp": {}, ".ogv": {}, ".ts": {}, ".mts": {},
	".m2ts": {}, ".vob": {}, ".asf": {}, ".rm": {}, ".rmvb": {}, ".divx": {},
	".xvid": {}, ".mpg": {}, ".mpeg": {}, ".m2v": {}, ".f4v": {}, ".f4p": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".tiff": {},
	".tif": {}, ".webp": {}, ".svg": {}, ".ico": {}, ".raw": {}, ".cr2": {},
	".nef": {}, ".arw": {}, ".heic": {}, ".heif": {}, ".avif": {}, ".jxl": {},
}

// KindForExtension classifies a filename extension (with or without the dot).
func KindForExtension(ext string) Kind {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if _, ok := audioExtensions[ext]; ok {
		return KindAudio
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	return KindUnknown
}

// IsMedia reports whether the extension belongs to any supported media kind.
func IsMedia(ext string) bool {
	return KindForExtension(ext) != KindUnknown
}

// audioCodecs maps an output container/format to its default ffmpeg encoder.
var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"flac": "flac",
	"aac":  "aac",
	"ogg":  "libvorbis",
	"wav":  "pcm_s16le",
	"m4a":  "aac",
	"wma":  "wmav2",
	"opus": "libopus",
}

// AudioCodecFor returns the default audio encoder for an output format.
func AudioCodecFor(format string) string {
	if codec, ok := audioCodecs[strings.ToLower(strings.TrimSpace(format))]; ok {
		return codec
	}
	return "aac"
}

// Lossless reports whether the audio format ignores bitrate tiers.
func Lossless(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "flac", "wav", "aiff", "alac":
		return true
	default:
		return false
	}
}

// Tier is a named quality preset.
type Tier string

const (
	TierSource   Tier = "source"
	Tier8K       Tier = "8k"
	Tier4K       Tier = "4k"
	TierHigh     Tier = "high"
	TierStandard Tier = "standard"
	TierLow      Tier = "low"
)

// ParseTier normalizes a tier label, defaulting unknown values to standard.
func ParseTier(value string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierSource, Tier8K, Tier4K, TierHigh, TierStandard, TierLow:
		return Tier(strings.ToLower(strings.TrimSpace(value)))
	default:
		return TierStandard
	}
}

// AudioBitrate returns the target bitrate for a tier. Empty means keep the
// source bitrate.
func AudioBitrate(tier Tier) string {
	switch tier {
	case TierSource:
		return ""
	case TierHigh, Tier8K, Tier4K:
		return "320k"
	case TierLow:
		return "128k"
	default:
		return "192k"
	}
}

type videoQuality struct {
	scale string
	crf   string
	cq    string
}

var videoQualities = map[Tier]videoQuality{
	Tier8K:       {scale: "scale=7680:4320", crf: "15", cq: "15"},
	Tier4K:       {scale: "scale=3840:2160", crf: "18", cq: "18"},
	TierHigh:     {scale: "scale=1920:1080", crf: "18", cq: "18"},
	TierStandard: {scale: "scale=1280:720", crf: "23", cq: "23"},
	TierLow:      {scale: "scale=854:480", crf: "28", cq: "28"},
}

// VideoQualityArgs returns the ffmpeg arguments for a tier. GPU encoders use
// preset+CQ, CPU encoders use CRF. TierSource adds nothing.
func VideoQualityArgs(tier Tier, gpu bool) []string {
	q, ok := videoQualities[tier]
	if !ok {
		return nil
	}
	if gpu {
		return []string{"-vf", q.scale, "-preset", "fast", "-cq", q.cq}
	}
	return []string{"-vf", q.scale, "-crf", q.crf}
}

// ImageQuality returns the JPEG quality value for a tier. ok=false means
// keep the source quality.
func ImageQuality(tier Tier) (int, bool) {
	switch tier {
	case TierSource:
		return 0, false
	case TierHigh, Tier8K, Tier4K:
		return 95, true
	case TierLow:
		return 60, true
	default:
		return 80, true
	}
}

// Family identifies a video codec family independent of the encoder
// implementing it.
type Family string

const (
	FamilyH264 Family = "h264"
	FamilyHEVC Family = "hevc"
	FamilyAV1  Family = "av1"
	FamilyVP9  Family = "vp9"
)

// ParseFamily normalizes codec aliases (h265 means hevc). Unknown values are
// returned as-is so the selector can fall back to CPU-only.
func ParseFamily(value string) Family {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	switch cleaned {
	case "h265", "hevc":
		return FamilyHEVC
	case "x264", "avc", "h264":
		return FamilyH264
	case "av1":
		return FamilyAV1
	case "vp9", "libvpx-vp9":
		return FamilyVP9
	default:
		return Family(cleaned)
	}
}

// Override captures a container compatibility rewrite applied before encoder
// selection.
type Override struct {
	VideoFamily Family
	AudioCodec  string
	ForceCPU    bool
	Reason      string
}

// ContainerOverride returns the compatibility override for an output
// container, if any. WebM only carries VP8/VP9/AV1 video and Vorbis/Opus
// audio, so requests are rewritten to VP9 + Opus with GPU disabled.
func ContainerOverride(format string) (Override, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "webm":
		return Override{
			VideoFamily: FamilyVP9,
			AudioCodec:  "libopus",
			ForceCPU:    true,
			Reason:      "WebM requires VP8/VP9/AV1 video and Vorbis/Opus audio; using VP9 + Opus",
		}, true
	default:
		return Override{}, false
	}
}

// cpuEncoders maps codec families to their software encoders.
var cpuEncoders = map[Family]string{
	FamilyH264: "libx264",
	FamilyHEVC: "libx265",
	FamilyAV1:  "libaom-av1",
	FamilyVP9:  "libvpx-vp9",
}

// CPUEncoder returns the software encoder for a family. Unknown families get
// libx264, which matches ffmpeg's broadest default.
func CPUEncoder(family Family) string {
	if enc, ok := cpuEncoders[family]; ok {
		return enc
	}
	return "libx264"
}
