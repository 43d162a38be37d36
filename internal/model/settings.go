package model

// AdminInfo describes the teacher using the application.
type AdminInfo struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Homeroom string `json:"homeroom"`
}

// AttendanceSettings holds the per-category limits, in days.
type AttendanceSettings struct {
	MenstrualLimit        int `json:"menstrualLimit" validate:"gte=0"`
	ExpDomesticLimit      int `json:"expDomesticLimit" validate:"gte=0"`
	ExpInternationalLimit int `json:"expInternationalLimit" validate:"gte=0"`
}
