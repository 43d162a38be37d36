package model

// Gender values as they appear in the roster files.
const (
	GenderFemale = "여성"
	GenderMale   = "남성"
)

// Student is a single roster row. Number is the identity; Name is used for
// constraint matching and may repeat within a roster.
type Student struct {
	Number     int            `json:"number"`
	Name       string         `json:"name"`
	Gender     string         `json:"gender,omitempty"`
	Attendance AttendanceLogs `json:"attendance"`
}

// AttendanceLogs groups the attendance exceptions recorded for a student.
type AttendanceLogs struct {
	MenstrualLog        []AttendanceEntry `json:"menstrualLog"`
	ExpDomesticLog      []AttendanceEntry `json:"expDomesticLog"`
	ExpInternationalLog []AttendanceEntry `json:"expInternationalLog"`
}

// AttendanceEntry is one logged absence. Days overrides the inclusive
// StartDate..EndDate span when positive.
type AttendanceEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate,omitempty"`
	Days      int    `json:"days,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// IsFemale reports whether the student is recorded as female.
func (s Student) IsFemale() bool {
	return s.Gender == GenderFemale
}

// EmptyAttendance returns attendance logs with every list initialised.
func EmptyAttendance() AttendanceLogs {
	return AttendanceLogs{
		MenstrualLog:        []AttendanceEntry{},
		ExpDomesticLog:      []AttendanceEntry{},
		ExpInternationalLog: []AttendanceEntry{},
	}
}
