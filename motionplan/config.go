package motionplan

import (
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/motionvalidity/logging"
)

// default values for checker configuration.
const (
	// Contacts at or below -defaultPenetrationEpsilon mm count as interpenetration.
	defaultPenetrationEpsilon = 1e-3

	// Contact points are generated for pairs closer than this many mm.
	defaultContactMargin = 0.5
)

// CheckerConfig configures a validity checker.
type CheckerConfig struct {
	BlacklistPath      string  `json:"blacklist_path,omitempty"`
	PenetrationEpsilon float64 `json:"penetration_epsilon,omitempty"`
	ContactMargin      float64 `json:"contact_margin,omitempty"`

	// ScanAllContacts keeps gathering disqualifying contacts after the decision for diagnostics.
	ScanAllContacts bool `json:"scan_all_contacts,omitempty"`

	// Category toggles, all default to true.
	CheckObjectObstacle *bool `json:"check_object_obstacle,omitempty"`
	CheckObjects        *bool `json:"check_objects,omitempty"`
	CheckObstacles      *bool `json:"check_obstacles,omitempty"`

	// LogLevel sets the level of the checker's own sublogger. Empty inherits the parent logger's level.
	LogLevel string `json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// NewCheckerConfigFromAttributes decodes a loosely typed attribute map, as found in JSON robot configs.
func NewCheckerConfigFromAttributes(attributes map[string]interface{}) (*CheckerConfig, error) {
	var conf CheckerConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode checker config")
	}
	return &conf, nil
}

// Validate ensures all parts of the config are valid. path names the config in error messages.
func (cfg *CheckerConfig) Validate(path string) error {
	var errs error
	if cfg.PenetrationEpsilon < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s: penetration_epsilon must be positive, got %f", path, cfg.PenetrationEpsilon))
	}
	if cfg.ContactMargin < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s: contact_margin must not be negative, got %f", path, cfg.ContactMargin))
	}
	if cfg.LogLevel != "" {
		if _, err := logging.LevelFromString(cfg.LogLevel); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s: log_level", path))
		}
	}
	if cfg.BlacklistPath != "" {
		if _, err := os.Stat(cfg.BlacklistPath); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s: blacklist_path", path))
		}
	}
	return errs
}

// withDefaults returns a copy with every unset field filled in.
func (cfg CheckerConfig) withDefaults() CheckerConfig {
	if cfg.PenetrationEpsilon == 0 {
		cfg.PenetrationEpsilon = defaultPenetrationEpsilon
	}
	if cfg.ContactMargin == 0 {
		cfg.ContactMargin = defaultContactMargin
	}
	enabled := true
	if cfg.CheckObjectObstacle == nil {
		cfg.CheckObjectObstacle = &enabled
	}
	if cfg.CheckObjects == nil {
		cfg.CheckObjects = &enabled
	}
	if cfg.CheckObstacles == nil {
		cfg.CheckObstacles = &enabled
	}
	return cfg
}
