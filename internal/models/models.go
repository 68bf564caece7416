package models

import "time"

// UserType distinguishes the two account families the API serves.
type UserType string

const (
	UserTypeStaff   UserType = "Staff"
	UserTypePatient UserType = "Patient"
)

// ResourceType names a server entity collection. The value doubles as the
// REST path segment and the cache tag for that collection.
type ResourceType string

const (
	ResourcePatients       ResourceType = "patients"
	ResourceStaff          ResourceType = "staff"
	ResourceDepartments    ResourceType = "departments"
	ResourceRoles          ResourceType = "roles"
	ResourcePermissions    ResourceType = "permissions"
	ResourceShifts         ResourceType = "shifts"
	ResourceTasks          ResourceType = "tasks"
	ResourceMedicalRecords ResourceType = "medical-records"
	ResourceAppointments   ResourceType = "appointments"
	ResourceNotifications  ResourceType = "notifications"
)

// Entity is implemented by every server-managed record.
type Entity interface {
	GetID() string
}

// RoleRef is the denormalized role summary carried on staff users.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StaffRef is a read-only staff summary embedded in other entities.
type StaffRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	RoleName  string `json:"roleName,omitempty"`
}

// PatientRef is a read-only patient summary embedded in other entities.
type PatientRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SessionUser is the authenticated identity attached to a session.
type SessionUser struct {
	ID        string   `json:"id"`
	UserType  UserType `json:"userType"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      *RoleRef `json:"role,omitempty"`
}

// RoleName returns the staff role name, empty for patients.
func (u *SessionUser) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

type Patient struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	Address     string    `json:"address,omitempty"`
	BloodGroup  string    `json:"bloodGroup,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Patient) GetID() string { return p.ID }

type Staff struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Role       RoleRef   `json:"role"`
	Department string    `json:"department,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s Staff) GetID() string { return s.ID }

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Head        *StaffRef `json:"head,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d Department) GetID() string { return d.ID }

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r Role) GetID() string { return r.ID }

type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Permission) GetID() string { return p.ID }

type Shift struct {
	ID        string    `json:"id"`
	Staff     StaffRef  `json:"staff"`
	Type      string    `json:"type"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Shift) GetID() string { return s.ID }

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  StaffRef   `json:"assignedTo"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t Task) GetID() string { return t.ID }

type MedicalRecord struct {
	ID        string     `json:"id"`
	Patient   PatientRef `json:"patient"`
	Doctor    StaffRef   `json:"doctor"`
	Diagnosis string     `json:"diagnosis"`
	Symptoms  string     `json:"symptoms,omitempty"`
	Treatment string     `json:"treatment,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (m MedicalRecord) GetID() string { return m.ID }

type Appointment struct {
	ID          string     `json:"id"`
	Patient     PatientRef `json:"patient"`
	Doctor      StaffRef   `json:"doctor"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (a Appointment) GetID() string { return a.ID }

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Type        string    `json:"type,omitempty"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	DeliveredAt time.Time `json:"deliveredAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (n Notification) GetID() string { return n.ID }
