package dto

// DashboardStatsResponse captures the aggregated admin dashboard counters.
type DashboardStatsResponse struct {
	TotalStudents         int `json:"totalStudents"`
	TotalInstructors      int `json:"totalInstructors"`
	TotalAvailabilities   int `json:"totalAvailabilities"`
	TotalSessions         int `json:"totalSessions"`
	EnabledAvailabilities int `json:"enabledAvailabilities"`
}

// InstructorScheduleEntry is one instructor's weekly window on the dashboard
// overview. Windowless instructors appear with HasSchedule false.
type InstructorScheduleEntry struct {
	InstructorID string  `json:"instructorId"`
	FullName     string  `json:"fullName"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	HasSchedule  bool    `json:"hasSchedule"`
	Weekdays     string  `json:"weekdays,omitempty"`
	Hours        string  `json:"hours,omitempty"`
	Enabled      bool    `json:"enabled"`
}
