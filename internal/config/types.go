package config

// Config is the whole service configuration.
//
// The file may be JSON or YAML (by extension); YAML is coerced to JSON
// bytes first so both formats share one strict decoder. Unknown fields are
// rejected.
//
// Minimal example (yaml):
//
//	http:
//	  addr: "127.0.0.1:8080"
//	logging:
//	  level: "info"
//	  console: true
//	storage:
//	  path: "./data/einsatzplan.db"
//	auth:
//	  app_url: "https://plan.example.com"
//	  service_key: "change-me"
type Config struct {
	HTTP        HTTPConfig        `json:"http"`
	Logging     LoggingConfig     `json:"logging"`
	Storage     StorageConfig     `json:"storage"`
	Auth        AuthConfig        `json:"auth"`
	Plan        PlanConfig        `json:"plan,omitempty"`
	Maintenance MaintenanceConfig `json:"maintenance,omitempty"`
}

type HTTPConfig struct {
	Addr string `json:"addr,omitempty"`

	// Timeouts are Go duration strings (e.g. "5s", "1m").
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type StorageConfig struct {
	Path string `json:"path,omitempty"`

	// BusyTimeout is a Go duration string; 0 means the sqlite default.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// AuthConfig controls invites, sessions and password resets.
//
// ServiceKey protects the admin invite endpoint; it is never logged.
type AuthConfig struct {
	AppURL     string `json:"app_url"`
	ServiceKey string `json:"service_key"`

	// TTLs are Go duration strings. Defaults: invite 168h, session 720h,
	// reset 1h.
	InviteTTL  string `json:"invite_ttl,omitempty"`
	SessionTTL string `json:"session_ttl,omitempty"`
	ResetTTL   string `json:"reset_ttl,omitempty"`

	// LoginRatePerMin caps login/forgot-password/invite-accept attempts
	// per client IP. 0 uses the default (10).
	LoginRatePerMin int `json:"login_rate_per_min,omitempty"`
}

// PlanConfig tunes the weekly view.
type PlanConfig struct {
	WeekTargetHours float64 `json:"week_target_hours,omitempty"`
	ViewHeightPx    float64 `json:"view_height_px,omitempty"`
	TopPadPx        float64 `json:"top_pad_px,omitempty"`
	BottomPadPx     float64 `json:"bottom_pad_px,omitempty"`
}

// MaintenanceConfig schedules background pruning of expired invites,
// sessions and reset tokens.
type MaintenanceConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`  // nil means enabled
	Schedule string `json:"schedule,omitempty"` // cron spec or @every; default "@hourly"
	Timezone string `json:"timezone,omitempty"` // IANA TZ, e.g. "Europe/Berlin"
}
