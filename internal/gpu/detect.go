package gpu

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/jaypipes/ghw"
	ghwgpu "github.com/jaypipes/ghw/pkg/gpu"
	"github.com/jaypipes/ghw/pkg/pci"

	"reel/internal/logging"
	"reel/internal/services"
)

var commandContext = exec.CommandContext

func getGPUDefault() ([]*ghwgpu.GraphicsCard, error) {
	info, err := ghw.GPU()
	if err != nil {
		return nil, err
	}
	return info.GraphicsCards, nil
}

func getPCIDefault() ([]*pci.Device, error) {
	info, err := ghw.PCI()
	if err != nil {
		return nil, err
	}
	return info.ListDevices(), nil
}

var getGPU = getGPUDefault
var getPCI = getPCIDefault

// Card is a graphics adapter found on the PCI bus.
type Card struct {
	Vendor      Vendor
	Description string
}

// Report captures the outcome of hardware encoder detection.
type Report struct {
	// Vendors lists the usable hardware encoder vendors in preference
	// order. Empty means software encoding only.
	Vendors []Vendor
	// Cards lists recognized graphics adapters. Informational; a vendor
	// can be usable without a matching card (and vice versa) depending
	// on how ffmpeg was built.
	Cards []Card
}

// Available reports whether any hardware encoder was detected.
func (r Report) Available() bool {
	return len(r.Vendors) > 0
}

// Detect probes the ffmpeg binary for hardware encoders and cross-checks
// the result against the PCI bus. The ffmpeg listing is authoritative:
// PCI probing only adds card descriptions and a warning when the two
// disagree, since drivers and ffmpeg builds routinely diverge.
func Detect(ctx context.Context, ffmpegBinary string, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	available, err := listEncoders(ctx, ffmpegBinary)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, vendor := range vendorOrder {
		if available[probeEncoders[vendor]] {
			report.Vendors = append(report.Vendors, vendor)
		}
	}
	report.Cards = probeCards(logger)

	for _, vendor := range report.Vendors {
		if len(report.Cards) > 0 && !cardsInclude(report.Cards, vendor) {
			logger.Warn("encoder available without a matching graphics card",
				logging.String("vendor", string(vendor)))
		}
	}
	if report.Available() {
		logger.Info("hardware encoders detected",
			logging.String("vendors", joinVendors(report.Vendors)))
	} else {
		logger.Info("no hardware encoders detected, using software encoding")
	}
	return report, nil
}

// listEncoders parses `ffmpeg -encoders` output. Each body line looks
// like " V....D h264_nvenc  NVIDIA NVENC H.264 encoder"; the encoder
// name is the second field.
func listEncoders(ctx context.Context, ffmpegBinary string) (map[string]bool, error) {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := commandContext(ctx, binary, "-hide_banner", "-encoders")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrAborted, "gpu", "detect", "encoder listing interrupted", ctx.Err())
		}
		return nil, services.Wrap(services.ErrToolMissing, "gpu", "detect", "ffmpeg encoder listing failed", err)
	}

	names := make(map[string]bool)
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names, nil
}

var pciVendorPatterns = map[Vendor]*regexp.Regexp{
	VendorNvidia: regexp.MustCompile(`(?i)nvidia`),
	VendorAMD:    regexp.MustCompile(`(?i)advanced micro devices|\bamd\b|\bati\b`),
	VendorIntel:  regexp.MustCompile(`(?i)intel`),
	VendorApple:  regexp.MustCompile(`(?i)apple`),
}

var displayClassPattern = regexp.MustCompile(`(?i)display ?controller|vga|3d controller`)

// probeCards enumerates graphics adapters. Failures are logged and
// swallowed: PCI access needs permissions we may not have, and detection
// does not depend on it.
func probeCards(logger *slog.Logger) []Card {
	graphics, err := getGPU()
	if err != nil {
		logger.Debug("graphics card probe failed", logging.Error(err))
	}
	var cards []Card
	for _, card := range graphics {
		if card.DeviceInfo == nil || card.DeviceInfo.Vendor == nil {
			continue
		}
		vendor, ok := matchPCIVendor(card.DeviceInfo.Vendor.Name)
		if !ok {
			continue
		}
		cards = append(cards, Card{Vendor: vendor, Description: deviceDescription(card.DeviceInfo)})
	}
	if len(cards) > 0 {
		return cards
	}

	// On VMs the graphics card list may be empty; fall back to scanning
	// display controllers on the PCI bus.
	devices, err := getPCI()
	if err != nil {
		logger.Debug("pci bus probe failed", logging.Error(err))
		return nil
	}
	for _, device := range devices {
		if device.Vendor == nil || device.Class == nil {
			continue
		}
		if !displayClassPattern.MatchString(device.Class.Name) {
			continue
		}
		vendor, ok := matchPCIVendor(device.Vendor.Name)
		if !ok {
			continue
		}
		cards = append(cards, Card{Vendor: vendor, Description: deviceDescription(device)})
	}
	return cards
}

func deviceDescription(device *pci.Device) string {
	name := device.Vendor.Name
	if device.Product != nil && device.Product.Name != "" {
		name += " " + device.Product.Name
	}
	return name
}

func matchPCIVendor(name string) (Vendor, bool) {
	for _, vendor := range vendorOrder {
		if pciVendorPatterns[vendor].MatchString(name) {
			return vendor, true
		}
	}
	return "", false
}

func cardsInclude(cards []Card, vendor Vendor) bool {
	for _, card := range cards {
		if card.Vendor == vendor {
			return true
		}
	}
	return false
}

func joinVendors(vendors []Vendor) string {
	parts := make([]string, 0, len(vendors))
	for _, vendor := range vendors {
		parts = append(parts, string(vendor))
	}
	return strings.Join(parts, ",")
}
