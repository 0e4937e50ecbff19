package config

import (
	"strings"

	logx "einsatzplan/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections and
// (2) safe structured attrs for logging (never includes the service key).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 16)

	if oldCfg.HTTP != newCfg.HTTP {
		changed = append(changed, "http")
		attrs = append(attrs, logx.String("http.addr", strings.TrimSpace(newCfg.HTTP.Addr)))
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.path", strings.TrimSpace(newCfg.Storage.Path)))
	}

	// Auth (never log the service key itself)
	if oldCfg.Auth != newCfg.Auth {
		changed = append(changed, "auth")
		attrs = append(attrs,
			logx.String("auth.app_url", strings.TrimSpace(newCfg.Auth.AppURL)),
			logx.Bool("auth.service_key_set", strings.TrimSpace(newCfg.Auth.ServiceKey) != ""),
			logx.Int("auth.login_rate_per_min", newCfg.Auth.LoginRatePerMin),
		)
	}

	if oldCfg.Plan != newCfg.Plan {
		changed = append(changed, "plan")
		attrs = append(attrs, logx.Float64("plan.week_target_hours", newCfg.Plan.WeekTargetHours))
	}

	if !maintenanceEqual(oldCfg.Maintenance, newCfg.Maintenance) {
		changed = append(changed, "maintenance")
		attrs = append(attrs, logx.String("maintenance.schedule", strings.TrimSpace(newCfg.Maintenance.Schedule)))
	}

	return changed, attrs
}

func maintenanceEqual(a, b MaintenanceConfig) bool {
	if (a.Enabled == nil) != (b.Enabled == nil) {
		return false
	}
	if a.Enabled != nil && *a.Enabled != *b.Enabled {
		return false
	}
	return a.Schedule == b.Schedule && a.Timezone == b.Timezone
}
