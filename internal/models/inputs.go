package models

import "time"

// Mutation payloads. Optional fields are pointers so the same struct serves
// both create and partial update: nil fields are omitted from the PATCH body
// and left untouched by the server.

type PatientInput struct {
	FirstName   string  `json:"firstName,omitempty"`
	LastName    string  `json:"lastName,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Address     *string `json:"address,omitempty"`
	BloodGroup  *string `json:"bloodGroup,omitempty"`
}

type StaffInput struct {
	FirstName  string  `json:"firstName,omitempty"`
	LastName   string  `json:"lastName,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	RoleID     string  `json:"roleId,omitempty"`
	Department *string `json:"department,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type DepartmentInput struct {
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	HeadID      *string `json:"headId,omitempty"`
}

type RoleInput struct {
	Name        string   `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type PermissionInput struct {
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ShiftInput struct {
	StaffID   string     `json:"staffId,omitempty"`
	Type      string     `json:"type,omitempty"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

type TaskInput struct {
	Title       string     `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type MedicalRecordInput struct {
	PatientID string  `json:"patientId,omitempty"`
	DoctorID  string  `json:"doctorId,omitempty"`
	Diagnosis string  `json:"diagnosis,omitempty"`
	Symptoms  *string `json:"symptoms,omitempty"`
	Treatment *string `json:"treatment,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type AppointmentInput struct {
	PatientID   string     `json:"patientId,omitempty"`
	DoctorID    string     `json:"doctorId,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

type NotificationInput struct {
	RecipientID string `json:"recipientId,omitempty"`
	Type        string `json:"type,omitempty"`
	Message     string `json:"message,omitempty"`
	Read        *bool  `json:"read,omitempty"`
}

// RegisterInput is the self-service patient registration payload.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	Gender    string `json:"gender,omitempty"`
}
