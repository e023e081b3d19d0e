package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/units"
)

// DeploymentConfig holds the tunable parameters of the detection pipeline and
// tracker. All fields are pointers so a JSON file can override any subset;
// the Get* methods supply defaults for fields left unset, making partial
// configs safe.
type DeploymentConfig struct {
	// Post-processing params
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	IoUThreshold        *float64 `json:"iou_threshold,omitempty"`
	MaxDetections       *int     `json:"max_detections,omitempty"`

	// Frame cycle params
	ProcessEveryNFrames *int     `json:"process_every_n_frames,omitempty"`
	AllowedClasses      []string `json:"allowed_classes,omitempty"`

	// Tracker params
	ResetIdentityCounter *bool `json:"reset_identity_counter,omitempty"`

	// Speed reporting params
	SpeedUnits     *string  `json:"speed_units,omitempty"`
	MetersPerPixel *float64 `json:"meters_per_pixel,omitempty"`

	// Alerting params
	AlertCooldown *string `json:"alert_cooldown,omitempty"` // duration string like "1s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// defaultAllowedClasses is the living-being allowlist the detector is
// deployed with. An explicit empty list in the JSON disables class
// filtering entirely.
var defaultAllowedClasses = []string{
	"person", "cat", "dog", "horse", "sheep",
	"cow", "elephant", "bear", "zebra", "giraffe",
}

// EmptyDeploymentConfig returns a DeploymentConfig with all fields unset.
func EmptyDeploymentConfig() *DeploymentConfig {
	return &DeploymentConfig{}
}

// LoadDeploymentConfig loads a DeploymentConfig from a JSON file.
// The file must have a .json extension and be under the max file size.
// Fields omitted from the JSON keep their defaults.
func LoadDeploymentConfig(path string) (*DeploymentConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDeploymentConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *DeploymentConfig) Validate() error {
	if c.ConfidenceThreshold != nil {
		if *c.ConfidenceThreshold < 0 || *c.ConfidenceThreshold > 1 {
			return fmt.Errorf("confidence_threshold must be between 0 and 1, got %f", *c.ConfidenceThreshold)
		}
	}

	if c.IoUThreshold != nil {
		if *c.IoUThreshold < 0 || *c.IoUThreshold > 1 {
			return fmt.Errorf("iou_threshold must be between 0 and 1, got %f", *c.IoUThreshold)
		}
	}

	if c.MaxDetections != nil {
		if *c.MaxDetections < 0 {
			return fmt.Errorf("max_detections must be non-negative, got %d", *c.MaxDetections)
		}
	}

	if c.ProcessEveryNFrames != nil {
		if *c.ProcessEveryNFrames < 1 {
			return fmt.Errorf("process_every_n_frames must be >= 1, got %d", *c.ProcessEveryNFrames)
		}
	}

	if c.SpeedUnits != nil && *c.SpeedUnits != "" {
		if !units.IsValid(*c.SpeedUnits) {
			return fmt.Errorf("invalid speed_units %q, valid: %s", *c.SpeedUnits, units.ValidUnitsString())
		}
	}

	if c.MetersPerPixel != nil {
		if *c.MetersPerPixel < 0 {
			return fmt.Errorf("meters_per_pixel must be non-negative, got %f", *c.MetersPerPixel)
		}
	}

	if c.AlertCooldown != nil && *c.AlertCooldown != "" {
		if _, err := time.ParseDuration(*c.AlertCooldown); err != nil {
			return fmt.Errorf("invalid alert_cooldown '%s': %w", *c.AlertCooldown, err)
		}
	}

	return nil
}

// GetConfidenceThreshold returns the confidence_threshold value or the default.
func (c *DeploymentConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.5
	}
	return *c.ConfidenceThreshold
}

// GetIoUThreshold returns the iou_threshold value or the default.
func (c *DeploymentConfig) GetIoUThreshold() float64 {
	if c.IoUThreshold == nil {
		return 0.45
	}
	return *c.IoUThreshold
}

// GetMaxDetections returns the max_detections value or the default.
func (c *DeploymentConfig) GetMaxDetections() int {
	if c.MaxDetections == nil {
		return 100
	}
	return *c.MaxDetections
}

// GetProcessEveryNFrames returns the process_every_n_frames value or the default.
func (c *DeploymentConfig) GetProcessEveryNFrames() int {
	if c.ProcessEveryNFrames == nil {
		return 1
	}
	return *c.ProcessEveryNFrames
}

// GetAllowedClasses returns the configured class allowlist. A nil field means
// the built-in living-being allowlist; an explicit empty list means no
// class filtering.
func (c *DeploymentConfig) GetAllowedClasses() []string {
	if c.AllowedClasses == nil {
		out := make([]string, len(defaultAllowedClasses))
		copy(out, defaultAllowedClasses)
		return out
	}
	out := make([]string, len(c.AllowedClasses))
	copy(out, c.AllowedClasses)
	return out
}

// GetResetIdentityCounter returns the reset_identity_counter value or the default.
func (c *DeploymentConfig) GetResetIdentityCounter() bool {
	if c.ResetIdentityCounter == nil {
		return false
	}
	return *c.ResetIdentityCounter
}

// GetSpeedUnits returns the speed_units value or the default.
func (c *DeploymentConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil || *c.SpeedUnits == "" {
		return units.MPS
	}
	return *c.SpeedUnits
}

// GetMetersPerPixel returns the meters_per_pixel value or the default.
// Zero means no real-world scale is available and speeds stay in pixels.
func (c *DeploymentConfig) GetMetersPerPixel() float64 {
	if c.MetersPerPixel == nil {
		return 0
	}
	return *c.MetersPerPixel
}

// GetAlertCooldown parses and returns the AlertCooldown as a time.Duration.
func (c *DeploymentConfig) GetAlertCooldown() time.Duration {
	if c.AlertCooldown == nil || *c.AlertCooldown == "" {
		return time.Second
	}
	d, err := time.ParseDuration(*c.AlertCooldown)
	if err != nil {
		return time.Second
	}
	return d
}
