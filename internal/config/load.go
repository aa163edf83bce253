package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with the value returned by lookup
func expandEnvVars(s string, lookup func(string) (string, bool)) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		v, _ := lookup(key)
		return v
	})
}

// Load reads a YAML config file, expanding $(ENV_VAR) placeholders first.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, os.LookupEnv)
}

// Parse decodes YAML config bytes, expanding placeholders with lookup.
func Parse(data []byte, lookup func(string) (string, bool)) (Config, error) {
	expanded := expandEnvVars(string(data), lookup)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling yaml: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Environment variable names understood by FromEnv.
const (
	EnvTargetAccountID = "TARGET_ACCOUNT_ID"
	EnvSourceRegion    = "SOURCE_REGION"
	EnvTargetRegion    = "TARGET_REGION"
	EnvMatchTags       = "MATCH_TAGS"
	EnvTargetKMSKeyARN = "TARGET_ACCOUNT_KMS_KEY_ARN"
	EnvSetupName       = "SETUP_NAME"
	EnvRetentionPeriod = "RETENTION_PERIOD"
	EnvSourceRoleARN   = "SOURCE_ROLE_ARN"
	EnvCleanupSchedule = "CLEANUP_SCHEDULE"
	EnvDryRun          = "DRY_RUN"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
)

// FromEnv builds a Config from environment-style settings. Malformed values
// fail here; missing ones are reported by Validate.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(mapEnvKey(key))
		return v
	}

	cfg := Config{
		SetupName: get(EnvSetupName),
		Replication: ReplicationConfig{
			TargetAccountID: get(EnvTargetAccountID),
			SourceRegion:    get(EnvSourceRegion),
			TargetRegion:    get(EnvTargetRegion),
			TargetKMSKeyARN: get(EnvTargetKMSKeyARN),
			SourceRoleARN:   get(EnvSourceRoleARN),
		},
		Schedule: ScheduleConfig{
			Cleanup: get(EnvCleanupSchedule),
		},
		Logging: LoggingConfig{
			Level:  get(EnvLogLevel),
			Format: get(EnvLogFormat),
		},
	}

	if raw := get(EnvMatchTags); raw != "" {
		tags, err := parseMatchTags(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Replication.MatchTags = tags
	}

	if raw := get(EnvRetentionPeriod); raw != "" {
		days, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvRetentionPeriod, raw)
		}
		cfg.Retention.PeriodDays = &days
	}

	if raw := get(EnvDryRun); raw != "" {
		dry, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvDryRun, raw)
		}
		cfg.Retention.DryRun = dry
	}

	cfg.applyDefaults()
	return cfg, nil
}

// parseMatchTags decodes a JSON object of string values. Comments and
// trailing commas are tolerated.
func parseMatchTags(raw string) (map[string]string, error) {
	var tags map[string]string
	if err := json.Unmarshal(jsonc.ToJSON([]byte(raw)), &tags); err != nil {
		return nil, fmt.Errorf("%w: %s must be a JSON object of strings: %v", ErrInvalid, EnvMatchTags, err)
	}
	return tags, nil
}
