package classroom

import (
	"context"
	"strings"

	"classroom-backend/internal/model"
	"classroom-backend/internal/store"
)

// AdminInfo returns the stored teacher profile.
func (s *Service) AdminInfo(ctx context.Context) (model.AdminInfo, error) {
	var info model.AdminInfo
	if err := s.readSetting(ctx, store.KeyAdminInfo, &info); err != nil {
		return model.AdminInfo{}, err
	}
	return info, nil
}

// SetAdminInfo stores the teacher profile.
func (s *Service) SetAdminInfo(ctx context.Context, info model.AdminInfo) error {
	info.Name = strings.TrimSpace(info.Name)
	info.Role = strings.TrimSpace(info.Role)
	info.Homeroom = strings.TrimSpace(info.Homeroom)
	return store.SetJSON(ctx, s.store, store.KeyAdminInfo, info)
}

// AttendanceSettings returns the stored limits, or the configured defaults.
func (s *Service) AttendanceSettings(ctx context.Context) (model.AttendanceSettings, error) {
	settings := model.AttendanceSettings{
		MenstrualLimit:        s.cfg.Attendance.MenstrualLimit,
		ExpDomesticLimit:      s.cfg.Attendance.ExpDomesticLimit,
		ExpInternationalLimit: s.cfg.Attendance.ExpInternationalLimit,
	}
	if err := s.readSetting(ctx, store.KeyAttendanceSettings, &settings); err != nil {
		return model.AttendanceSettings{}, err
	}
	return settings, nil
}

// SetAttendanceSettings validates and stores the limits.
func (s *Service) SetAttendanceSettings(ctx context.Context, settings model.AttendanceSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		return s.invalid(err)
	}
	return store.SetJSON(ctx, s.store, store.KeyAttendanceSettings, settings)
}

// SetAPIKey stores the Gemini API key. An empty key falls back to the
// configured one.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	return store.SetJSON(ctx, s.store, store.KeyAPIKey, strings.TrimSpace(key))
}

// HasAPIKey reports whether any API key is in effect.
func (s *Service) HasAPIKey(ctx context.Context) (bool, error) {
	key, err := APIKeySource(s.store, s.cfg.Briefing.APIKey)(ctx)
	return key != "", err
}
