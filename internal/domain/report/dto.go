package report

// Report is the per-student attendance summary for one class, derived from
// the expected session calendar and the recorded check-ins. Always holds
// OnTime + Late + Absent == TotalExpected.
type Report struct {
	StudentID     string `json:"student_id"`
	ClassID       string `json:"class_id"`
	TotalExpected int    `json:"total_expected"`
	OnTime        int    `json:"on_time"`
	Late          int    `json:"late"`
	Absent        int    `json:"absent"`
}
