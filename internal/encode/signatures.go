package encode

import "strings"

// gpuFailureSignatures are stderr substrings indicating the hardware
// encoder itself is unusable (missing driver, unsupported device or
// codec) rather than the input being bad. Matching is case-insensitive
// and best-effort: the strings track messages observed from current
// ffmpeg builds and may need updating as ffmpeg evolves. A non-zero exit
// already fails an attempt on its own, so a stale signature list only
// affects which failures get the "hardware unavailable" label.
var gpuFailureSignatures = []string{
	"cannot load nvcuda",
	"cannot load libcuda",
	"cuda_error",
	"no capable devices found",
	"no nvenc capable devices",
	"device creation failed",
	"failed to initialise",
	"failed to initialize",
	"driver does not support",
	"error while opening encoder",
	"generic error in an external library",
	"no device available",
	"hardware accelerator failed",
}

// hardwareFailure reports whether any captured output line matches a
// known hardware-encoder failure signature.
func hardwareFailure(lines []string) bool {
	for _, line := range lines {
		lowered := strings.ToLower(line)
		for _, signature := range gpuFailureSignatures {
			if strings.Contains(lowered, signature) {
				return true
			}
		}
	}
	return false
}
