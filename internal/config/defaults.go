package config

import (
	"strings"
	"time"
)

// Default TTLs and knobs, applied when the config omits a field.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultStoragePath  = "./data/einsatzplan.db"
	DefaultInviteTTL    = 7 * 24 * time.Hour
	DefaultSessionTTL   = 30 * 24 * time.Hour
	DefaultResetTTL     = time.Hour
	DefaultLoginPerMin  = 10
	DefaultCronSchedule = "@hourly"
)

func (c HTTPConfig) AddrOrDefault() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return DefaultAddr
}

func (c StorageConfig) PathOrDefault() string {
	if p := strings.TrimSpace(c.Path); p != "" {
		return p
	}
	return DefaultStoragePath
}

func (c AuthConfig) InviteTTLOrDefault() (time.Duration, error) {
	return ParseDurationOrDefault("auth.invite_ttl", c.InviteTTL, DefaultInviteTTL)
}

func (c AuthConfig) SessionTTLOrDefault() (time.Duration, error) {
	return ParseDurationOrDefault("auth.session_ttl", c.SessionTTL, DefaultSessionTTL)
}

func (c AuthConfig) ResetTTLOrDefault() (time.Duration, error) {
	return ParseDurationOrDefault("auth.reset_ttl", c.ResetTTL, DefaultResetTTL)
}

func (c AuthConfig) LoginRateOrDefault() int {
	if c.LoginRatePerMin > 0 {
		return c.LoginRatePerMin
	}
	return DefaultLoginPerMin
}

func (c PlanConfig) WeekTargetOrDefault() float64 {
	if c.WeekTargetHours > 0 {
		return c.WeekTargetHours
	}
	return 40
}

func (c MaintenanceConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c MaintenanceConfig) ScheduleOrDefault() string {
	if s := strings.TrimSpace(c.Schedule); s != "" {
		return s
	}
	return DefaultCronSchedule
}
