package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeConversion()
	c.normalizeOrganize()
	c.normalizeAcoustID()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Tools.FPCalc) == "" {
		c.Tools.FPCalc = defaultFPCalcBinary
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.AudioQuality = strings.ToLower(strings.TrimSpace(c.Conversion.AudioQuality))
	if c.Conversion.AudioQuality == "" {
		c.Conversion.AudioQuality = defaultAudioQuality
	}
	c.Conversion.VideoQuality = strings.ToLower(strings.TrimSpace(c.Conversion.VideoQuality))
	if c.Conversion.VideoQuality == "" {
		c.Conversion.VideoQuality = defaultVideoQuality
	}
	c.Conversion.ImageQuality = strings.ToLower(strings.TrimSpace(c.Conversion.ImageQuality))
	if c.Conversion.ImageQuality == "" {
		c.Conversion.ImageQuality = defaultImageQuality
	}
	c.Conversion.PreferredVendor = strings.ToLower(strings.TrimSpace(c.Conversion.PreferredVendor))
	if c.Conversion.PreferredVendor == "" {
		c.Conversion.PreferredVendor = "auto"
	}
}

func (c *Config) normalizeOrganize() {
	if c.Organize.ProgressEvery <= 0 {
		c.Organize.ProgressEvery = defaultOrganizeProgress
	}
	if c.Organize.TimeoutSeconds < 0 {
		c.Organize.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeAcoustID() {
	if key := strings.TrimSpace(os.Getenv("ACOUSTID_API_KEY")); key != "" && strings.TrimSpace(c.AcoustID.APIKey) == "" {
		c.AcoustID.APIKey = key
	}
	c.AcoustID.APIKey = strings.TrimSpace(c.AcoustID.APIKey)
	if strings.TrimSpace(c.AcoustID.BaseURL) == "" {
		c.AcoustID.BaseURL = defaultAcoustIDBaseURL
	}
	if c.AcoustID.TimeoutSeconds <= 0 {
		c.AcoustID.TimeoutSeconds = defaultAcoustIDTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
