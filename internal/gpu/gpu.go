package gpu

import (
	"strings"

	"reel/internal/media/formats"
)

// Vendor identifies a hardware encoder family.
type Vendor string

const (
	VendorNvidia Vendor = "nvidia"
	VendorAMD    Vendor = "amd"
	VendorIntel  Vendor = "intel"
	VendorApple  Vendor = "apple"
)

// vendorOrder is the preference order when several accelerators are
// present on the same machine.
var vendorOrder = []Vendor{VendorNvidia, VendorAMD, VendorIntel, VendorApple}

// ParseVendor normalizes a configured vendor name. An empty string or
// "auto" returns ok=false, meaning no preference.
func ParseVendor(value string) (Vendor, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "nvidia":
		return VendorNvidia, true
	case "amd":
		return VendorAMD, true
	case "intel":
		return VendorIntel, true
	case "apple":
		return VendorApple, true
	}
	return "", false
}

// probeEncoders maps each vendor to the encoder whose presence in the
// ffmpeg encoder listing marks the vendor as usable.
var probeEncoders = map[Vendor]string{
	VendorNvidia: "h264_nvenc",
	VendorAMD:    "h264_amf",
	VendorIntel:  "h264_qsv",
	VendorApple:  "h264_videotoolbox",
}

// vendorEncoders lists each vendor's encoders per codec family, newest
// generation first where a vendor ships more than one.
var vendorEncoders = map[Vendor]map[formats.Family][]string{
	VendorNvidia: {
		formats.FamilyH264: {"h264_nvenc"},
		formats.FamilyHEVC: {"hevc_nvenc"},
		formats.FamilyAV1:  {"av1_nvenc"},
	},
	VendorAMD: {
		formats.FamilyH264: {"h264_amf"},
		formats.FamilyHEVC: {"hevc_amf"},
	},
	VendorIntel: {
		formats.FamilyH264: {"h264_qsv"},
		formats.FamilyHEVC: {"hevc_qsv"},
	},
	VendorApple: {
		formats.FamilyH264: {"h264_videotoolbox"},
		formats.FamilyHEVC: {"hevc_videotoolbox"},
	},
}

// Candidate is one encoder to try, in order, for a conversion.
type Candidate struct {
	Encoder  string
	Vendor   Vendor // empty for software encoders
	Hardware bool
}

// Select builds the ordered encoder candidate list for a codec family.
// Hardware candidates come first in vendor preference order, restricted
// to the detected vendors; the final element is always the software
// encoder for the family, so the returned slice is never empty.
func Select(family formats.Family, detected []Vendor, preferred Vendor) []Candidate {
	var candidates []Candidate
	for _, vendor := range vendorOrder {
		if preferred != "" && vendor != preferred {
			continue
		}
		if !containsVendor(detected, vendor) {
			continue
		}
		for _, encoder := range vendorEncoders[vendor][family] {
			candidates = append(candidates, Candidate{Encoder: encoder, Vendor: vendor, Hardware: true})
		}
	}
	candidates = append(candidates, Candidate{Encoder: formats.CPUEncoder(family)})
	return candidates
}

func containsVendor(vendors []Vendor, vendor Vendor) bool {
	for _, v := range vendors {
		if v == vendor {
			return true
		}
	}
	return false
}
