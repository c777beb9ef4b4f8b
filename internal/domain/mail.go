package domain

const (
	MailTypeShiftAssignment = "shift_assignment"
	MailTypeShiftRemoval    = "shift_removal"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ShiftAssignmentMailData struct {
	FullName     string `json:"fullName"`
	ShiftDate    string `json:"shiftDate"`
	TemplateName string `json:"templateName"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Reason       string `json:"reason"`
}

type ShiftRemovalMailData struct {
	FullName     string `json:"fullName"`
	ShiftDate    string `json:"shiftDate"`
	TemplateName string `json:"templateName"`
	Reason       string `json:"reason"`
}
