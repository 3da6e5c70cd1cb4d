package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Duration is a time.Duration read from a TOML string such as "500ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return goerr.Wrap(ErrInvalidDuration, err.Error(), goerr.V("value", string(text)))
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Dashboard tunes the dashboard runtime
type Dashboard struct {
	NotesDebounce         Duration `toml:"notes_debounce"`
	RosterConcurrency     int      `toml:"roster_concurrency"`
	RosterRefreshInterval Duration `toml:"roster_refresh_interval"`
	EscalationLookback    Duration `toml:"escalation_lookback"`
	Timezone              string   `toml:"timezone"`
	ClinicianHeader       string   `toml:"clinician_header"`
}

// CancerType is a roster filter option
type CancerType struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the CancerType is valid
func (c *CancerType) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return goerr.Wrap(ErrMissingCancerTypeID, "cancer type without ID", goerr.V("name", c.Name))
	}
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrMissingName, "cancer type without name", goerr.V(CancerTypeIDKey, c.ID))
	}
	return nil
}

// DashboardConfig is the content of the dashboard TOML file
type DashboardConfig struct {
	Dashboard   Dashboard    `toml:"dashboard"`
	CancerTypes []CancerType `toml:"cancer_type"`
}

// DefaultDashboardConfig returns the configuration used without a file
func DefaultDashboardConfig() *DashboardConfig {
	cfg := &DashboardConfig{
		Dashboard: Dashboard{
			NotesDebounce:         Duration{500 * time.Millisecond},
			RosterConcurrency:     8,
			RosterRefreshInterval: Duration{5 * time.Minute},
			EscalationLookback:    Duration{7 * 24 * time.Hour},
			Timezone:              "UTC",
			ClinicianHeader:       "X-Forwarded-Email",
		},
	}
	for _, c := range model.DefaultCancerTypes() {
		cfg.CancerTypes = append(cfg.CancerTypes, CancerType{ID: c.ID, Name: c.Name})
	}
	return cfg
}

// Validate checks if the DashboardConfig is valid
func (c *DashboardConfig) Validate() error {
	d := c.Dashboard
	for name, v := range map[string]Duration{
		"notes_debounce":          d.NotesDebounce,
		"roster_refresh_interval": d.RosterRefreshInterval,
		"escalation_lookback":     d.EscalationLookback,
	} {
		if v.Duration <= 0 {
			return goerr.Wrap(ErrInvalidDuration, "duration must be positive",
				goerr.V(FieldKey, name),
				goerr.V("value", v.String()))
		}
	}

	if d.RosterConcurrency < 1 {
		return goerr.Wrap(ErrInvalidConcurrency, "invalid roster concurrency", goerr.V("value", d.RosterConcurrency))
	}

	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return goerr.Wrap(ErrInvalidTimezone, err.Error(), goerr.V("timezone", d.Timezone))
	}

	seen := make(map[string]bool)
	for _, ct := range c.CancerTypes {
		if err := ct.Validate(); err != nil {
			return goerr.Wrap(err, "invalid cancer type")
		}
		id := strings.ToLower(strings.TrimSpace(ct.ID))
		if seen[id] {
			return goerr.Wrap(ErrDuplicateCancerType, "cancer type listed twice", goerr.V(CancerTypeIDKey, ct.ID))
		}
		seen[id] = true
	}

	return nil
}

// Location loads the configured timezone
func (c *DashboardConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidTimezone, err.Error(), goerr.V("timezone", c.Dashboard.Timezone))
	}
	return loc, nil
}

// ModelCancerTypes converts the filter options to the domain model
func (c *DashboardConfig) ModelCancerTypes() []model.CancerType {
	types := make([]model.CancerType, len(c.CancerTypes))
	for i, ct := range c.CancerTypes {
		types[i] = model.CancerType{ID: ct.ID, Name: ct.Name}
	}
	return types
}

// LoadDashboardConfig loads a dashboard TOML file. Keys absent from the
// file keep their defaults; a file listing cancer types replaces the
// default list.
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	cfg := DefaultDashboardConfig()
	cfg.CancerTypes = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, path))
	}
	if len(cfg.CancerTypes) == 0 {
		cfg.CancerTypes = DefaultDashboardConfig().CancerTypes
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return cfg, nil
}

// AppConfig holds the CLI flag pointing at the dashboard file
type AppConfig struct {
	path string
}

func (x *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to dashboard TOML config file (defaults apply when omitted)",
			Sources:     cli.EnvVars("ONCOWATCH_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path, empty when none was given
func (x *AppConfig) Path() string {
	return x.path
}

// Configure loads the dashboard file, or the defaults when no path is set
func (x *AppConfig) Configure() (*DashboardConfig, error) {
	if x.path == "" {
		return DefaultDashboardConfig(), nil
	}
	return LoadDashboardConfig(x.path)
}
