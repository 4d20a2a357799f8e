package models

import "time"

// Default values for AppSettings.
const (
	DefaultSyncIntervalMinutes = 30
	DefaultLanguage            = "en"
	DefaultTheme               = "auto"
	DefaultLineID              = 1
)

// AppSettings is the single persisted settings record edited from the settings screen.
type AppSettings struct {
	Notifications bool   `json:"notifications"`
	AutoSync      bool   `json:"autoSync"`
	SyncInterval  int    `json:"syncInterval"` // minutes
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	DefaultLine   int    `json:"defaultLine"`
}

// DefaultAppSettings returns the settings used before the user changes anything.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Notifications: true,
		AutoSync:      true,
		SyncInterval:  DefaultSyncIntervalMinutes,
		Theme:         DefaultTheme,
		Language:      DefaultLanguage,
		DefaultLine:   DefaultLineID,
	}
}

// SyncPeriod converts SyncInterval to a duration, using the default for non-positive values.
func (s AppSettings) SyncPeriod() time.Duration {
	minutes := s.SyncInterval
	if minutes <= 0 {
		minutes = DefaultSyncIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// SettingsPatch carries a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	Notifications *bool   `json:"notifications,omitempty"`
	AutoSync      *bool   `json:"autoSync,omitempty"`
	SyncInterval  *int    `json:"syncInterval,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	Language      *string `json:"language,omitempty"`
	DefaultLine   *int    `json:"defaultLine,omitempty"`
}

// Apply returns a copy of s with the patch applied.
func (p SettingsPatch) Apply(s AppSettings) AppSettings {
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.AutoSync != nil {
		s.AutoSync = *p.AutoSync
	}
	if p.SyncInterval != nil {
		s.SyncInterval = *p.SyncInterval
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.DefaultLine != nil {
		s.DefaultLine = *p.DefaultLine
	}
	return s
}

// QueuedEntry is an hourly entry that failed remote delivery and awaits replay.
type QueuedEntry struct {
	HourlyEntry
	QueueID   string `json:"queueId"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds at capture
}

// CapturedAt returns the capture time of the entry.
func (e QueuedEntry) CapturedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// SyncOutcome reports the result of one sync attempt.
type SyncOutcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SyncedCount int    `json:"syncedCount,omitempty"`
}
