package config

import (
	"fmt"
)

var validTiers = map[string]struct{}{
	"source":   {},
	"8k":       {},
	"4k":       {},
	"high":     {},
	"standard": {},
	"low":      {},
}

var validVendors = map[string]struct{}{
	"auto":   {},
	"nvidia": {},
	"amd":    {},
	"intel":  {},
	"apple":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	for field, tier := range map[string]string{
		"conversion.audio_quality": c.Conversion.AudioQuality,
		"conversion.video_quality": c.Conversion.VideoQuality,
		"conversion.image_quality": c.Conversion.ImageQuality,
	} {
		if _, ok := validTiers[tier]; !ok {
			return fmt.Errorf("%s: unknown quality tier %q (want source, 8k, 4k, high, standard, or low)", field, tier)
		}
	}
	if _, ok := validVendors[c.Conversion.PreferredVendor]; !ok {
		return fmt.Errorf("conversion.preferred_vendor: unknown vendor %q (want auto, nvidia, amd, intel, or apple)", c.Conversion.PreferredVendor)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
