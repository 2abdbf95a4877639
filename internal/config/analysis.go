package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/altitude.report/internal/resample"
	"github.com/banshee-data/altitude.report/internal/units"
)

// ExampleConfigPath is the checked-in example configuration, relative to the
// repository root.
const ExampleConfigPath = "config/analysis.example.json"

// Defaults and accepted ranges.
const (
	DefaultMinAltitude   = 1000.0
	DefaultBufferSize    = 1000.0
	DefaultSegmentLength = resample.DefaultSegmentLength
	DefaultCaptureDir    = "captures_altitude"
	DefaultDBPath        = "altitude.db"

	MinAltitudeLimit      = 10000.0
	MinBufferSize         = 50.0
	MaxBufferSize         = 10000.0
	MinSegmentLength      = 0.1
	MaxSegmentLength      = 100.0
	maxConfigFileSize     = 1 * 1024 * 1024
	defaultDisplayUnits   = units.Meters
	defaultRunSubdir      = true
	defaultDebugLogging   = false
)

// ColorStopConfig is one entry of the color ramp, with the color as #rrggbb.
type ColorStopConfig struct {
	Altitude float64 `json:"altitude"`
	Color    string  `json:"color"`
}

// AnalysisConfig holds the analysis parameters. Nil fields fall back to the
// defaults returned by the Get* methods, so partial files are safe.
type AnalysisConfig struct {
	// Grouping
	MinAltitude *float64 `json:"min_altitude,omitempty"`
	BufferSize  *float64 `json:"buffer_size,omitempty"`

	// Resampling
	SegmentLength *float64          `json:"segment_length,omitempty"`
	ColorStops    []ColorStopConfig `json:"color_stops,omitempty"`

	// Output
	CaptureDir   *string `json:"capture_dir,omitempty"`
	RunSubdir    *bool   `json:"run_subdir,omitempty"` // captures go to <capture_dir>/<run id>
	DBPath       *string `json:"db_path,omitempty"`
	DisplayUnits *string `json:"display_units,omitempty"`
	Debug        *bool   `json:"debug,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field set to its default.
func DefaultAnalysisConfig() *AnalysisConfig {
	stops := make([]ColorStopConfig, len(resample.DefaultColorStops))
	for i, s := range resample.DefaultColorStops {
		stops[i] = ColorStopConfig{Altitude: s.Altitude, Color: s.Color.Hex()}
	}
	return &AnalysisConfig{
		MinAltitude:   ptrFloat64(DefaultMinAltitude),
		BufferSize:    ptrFloat64(DefaultBufferSize),
		SegmentLength: ptrFloat64(DefaultSegmentLength),
		ColorStops:    stops,
		CaptureDir:    ptrString(DefaultCaptureDir),
		RunSubdir:     ptrBool(defaultRunSubdir),
		DBPath:        ptrString(DefaultDBPath),
		DisplayUnits:  ptrString(defaultDisplayUnits),
		Debug:         ptrBool(defaultDebugLogging),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.MinAltitude != nil {
		if *c.MinAltitude < 0 || *c.MinAltitude > MinAltitudeLimit {
			return fmt.Errorf("min_altitude must be between 0 and %.0f, got %f", MinAltitudeLimit, *c.MinAltitude)
		}
	}
	if c.BufferSize != nil {
		if *c.BufferSize < MinBufferSize || *c.BufferSize > MaxBufferSize {
			return fmt.Errorf("buffer_size must be between %.0f and %.0f, got %f", MinBufferSize, MaxBufferSize, *c.BufferSize)
		}
	}
	if c.SegmentLength != nil {
		if *c.SegmentLength < MinSegmentLength || *c.SegmentLength > MaxSegmentLength {
			return fmt.Errorf("segment_length must be between %g and %g, got %f", MinSegmentLength, MaxSegmentLength, *c.SegmentLength)
		}
	}
	for i, s := range c.ColorStops {
		if _, err := resample.ParseHex(s.Color); err != nil {
			return fmt.Errorf("color_stops[%d]: %w", i, err)
		}
	}
	if c.DisplayUnits != nil && !units.IsValid(*c.DisplayUnits) {
		return fmt.Errorf("display_units must be one of %s, got %q", units.GetValidUnitsString(), *c.DisplayUnits)
	}
	if c.CaptureDir != nil && *c.CaptureDir == "" {
		return fmt.Errorf("capture_dir must not be empty")
	}
	return nil
}

// GetMinAltitude returns the min_altitude value or the default.
func (c *AnalysisConfig) GetMinAltitude() float64 {
	if c.MinAltitude == nil {
		return DefaultMinAltitude
	}
	return *c.MinAltitude
}

// GetBufferSize returns the buffer_size value or the default.
func (c *AnalysisConfig) GetBufferSize() float64 {
	if c.BufferSize == nil {
		return DefaultBufferSize
	}
	return *c.BufferSize
}

// GetSegmentLength returns the segment_length value or the default.
func (c *AnalysisConfig) GetSegmentLength() float64 {
	if c.SegmentLength == nil {
		return DefaultSegmentLength
	}
	return *c.SegmentLength
}

// GetColorStops returns the configured ramp, or the default ramp when none
// is set. Entries that fail to parse are skipped; Validate reports them.
func (c *AnalysisConfig) GetColorStops() []resample.ColorStop {
	if len(c.ColorStops) == 0 {
		return resample.DefaultColorStops
	}
	stops := make([]resample.ColorStop, 0, len(c.ColorStops))
	for _, s := range c.ColorStops {
		rgb, err := resample.ParseHex(s.Color)
		if err != nil {
			continue
		}
		stops = append(stops, resample.ColorStop{Altitude: s.Altitude, Color: rgb})
	}
	return stops
}

// GetCaptureDir returns the capture_dir value or the default.
func (c *AnalysisConfig) GetCaptureDir() string {
	if c.CaptureDir == nil {
		return DefaultCaptureDir
	}
	return *c.CaptureDir
}

// GetRunSubdir returns the run_subdir value or the default.
func (c *AnalysisConfig) GetRunSubdir() bool {
	if c.RunSubdir == nil {
		return defaultRunSubdir
	}
	return *c.RunSubdir
}

// GetDBPath returns the db_path value or the default.
func (c *AnalysisConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetDisplayUnits returns the display_units value or the default.
func (c *AnalysisConfig) GetDisplayUnits() string {
	if c.DisplayUnits == nil {
		return defaultDisplayUnits
	}
	return *c.DisplayUnits
}

// GetDebug returns the debug value or the default.
func (c *AnalysisConfig) GetDebug() bool {
	if c.Debug == nil {
		return defaultDebugLogging
	}
	return *c.Debug
}

// SetMinAltitude overrides min_altitude, typically from a command-line flag.
func (c *AnalysisConfig) SetMinAltitude(v float64) { c.MinAltitude = ptrFloat64(v) }

// SetBufferSize overrides buffer_size.
func (c *AnalysisConfig) SetBufferSize(v float64) { c.BufferSize = ptrFloat64(v) }

// SetSegmentLength overrides segment_length.
func (c *AnalysisConfig) SetSegmentLength(v float64) { c.SegmentLength = ptrFloat64(v) }

// SetCaptureDir overrides capture_dir.
func (c *AnalysisConfig) SetCaptureDir(v string) { c.CaptureDir = ptrString(v) }

// SetDBPath overrides db_path.
func (c *AnalysisConfig) SetDBPath(v string) { c.DBPath = ptrString(v) }

// SetDisplayUnits overrides display_units.
func (c *AnalysisConfig) SetDisplayUnits(v string) { c.DisplayUnits = ptrString(v) }
