package config

import "time"

// Config is loaded once at start and handed by value to each component.
type Config struct {
	SetupName    string            `yaml:"setupName"`
	Replication  ReplicationConfig `yaml:"replication"`
	Retention    RetentionConfig   `yaml:"retention"`
	Schedule     ScheduleConfig    `yaml:"schedule"`
	Logging      LoggingConfig     `yaml:"logging"`
	ConfigReload ReloadConfig      `yaml:"configReload"`
}

type ReplicationConfig struct {
	TargetAccountID string            `yaml:"targetAccountId"`
	SourceRegion    string            `yaml:"sourceRegion"`
	TargetRegion    string            `yaml:"targetRegion"`
	MatchTags       map[string]string `yaml:"matchTags"`
	TargetKMSKeyARN string            `yaml:"targetKmsKeyArn"`
	SourceRoleARN   string            `yaml:"sourceRoleArn"` // cross-account copy only
}

// CrossAccount reports whether snapshot tags are read through an assumed role.
func (r ReplicationConfig) CrossAccount() bool {
	return r.SourceRoleARN != ""
}

type RetentionConfig struct {
	PeriodDays *int `yaml:"periodDays"` // nil = not configured
	DryRun     bool `yaml:"dryRun"`
}

// Days returns the retention window, or 0 when unset.
func (r RetentionConfig) Days() int {
	if r.PeriodDays == nil {
		return 0
	}
	return *r.PeriodDays
}

type ScheduleConfig struct {
	Cleanup    string `yaml:"cleanup"` // cron spec, e.g. "@daily"
	RunOnStart bool   `yaml:"runOnStart"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "text", "json", "logfmt"
}

type ReloadConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Method         string        `yaml:"method"` // "auto", "poll", "fsnotify"
	PollInterval   time.Duration `yaml:"pollInterval"`
	DebounceWindow time.Duration `yaml:"debounceWindow"`
}

// DefaultCleanupSchedule is used when no schedule is configured.
const DefaultCleanupSchedule = "@daily"

func (c *Config) applyDefaults() {
	if c.Schedule.Cleanup == "" {
		c.Schedule.Cleanup = DefaultCleanupSchedule
	}
	if c.ConfigReload.Method == "" {
		c.ConfigReload.Method = "auto"
	}
	if c.ConfigReload.PollInterval <= 0 {
		c.ConfigReload.PollInterval = 10 * time.Second
	}
	if c.ConfigReload.DebounceWindow <= 0 {
		c.ConfigReload.DebounceWindow = 500 * time.Millisecond
	}
}
