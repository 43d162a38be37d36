package store

// Keys of the blobs held in the store. The names match the localStorage keys
// of the browser client so exported data can be imported as is.
const (
	KeyStudents           = "STUDENT_MASTER_LIST"
	KeyGrade              = "STUDENT_GRADE"
	KeyClassNum           = "STUDENT_CLASSNUM"
	KeySeatingHistory     = "SEATING_HISTORY_LIST"
	KeySeatingColumns     = "SEATING_COLUMNS"
	KeyTodos              = "TODO_LIST"
	KeyMessages           = "MESSAGE_LOG"
	KeyAdminInfo          = "ADMIN_INFO"
	KeyAttendanceSettings = "ATTENDANCE_SETTINGS"
	KeyLastBriefing       = "LAST_BRIEFING"
	KeyAPIKey             = "GEMINI_API_KEY"
)
