package model

import "time"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

const (
	StatusActive  = "active"
	StatusLocked  = "locked"
	StatusInvited = "invited"
	StatusDeleted = "deleted"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	TeacherID    *string
	StudentID    *string
	ParentID     *string
	Status       string
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrimaryRole is the first role in the set; the token codec and API
// responses report it alongside the full set.
func (u User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

// ProgressItem is the denormalized per-student score cache for one
// curriculum element. The score entry log is the source of truth.
type ProgressItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	Score  int    `json:"score"`
}

type Student struct {
	ID            string
	TeacherID     string
	Name          string
	Email         *string
	Instrument    *string
	Grade         *int
	ParentName    *string
	ParentEmail   *string
	InviteCode    string
	ProgressItems []ProgressItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScoreEntry is one graded curriculum element on one lesson date.
// Entries are append-only.
type ScoreEntry struct {
	ID           string
	TeacherID    string
	StudentID    string
	LessonDate   time.Time
	ElementID    string
	ElementLabel *string
	Score        *int
	TempoCurrent *int
	TempoGoal    *int
	Dynamics     *string
	Articulation *string
	CreatedAt    time.Time
}

const (
	ElementScales        = "scales"
	ElementPieceA        = "pieceA"
	ElementPieceB        = "pieceB"
	ElementPieceC        = "pieceC"
	ElementSightReading  = "sightReading"
	ElementAuralTraining = "auralTraining"
)

func KnownElement(id string) bool {
	switch id {
	case ElementScales, ElementPieceA, ElementPieceB, ElementPieceC, ElementSightReading, ElementAuralTraining:
		return true
	default:
		return false
	}
}

// DefaultProgressItems is the six-element curriculum a student starts
// with when no items are stored yet.
func DefaultProgressItems() []ProgressItem {
	return []ProgressItem{
		{ID: ElementScales, Label: "Scales", Weight: 15},
		{ID: ElementPieceA, Label: "Piece A", Weight: 20},
		{ID: ElementPieceB, Label: "Piece B", Weight: 20},
		{ID: ElementPieceC, Label: "Piece C", Weight: 20},
		{ID: ElementSightReading, Label: "Sight Reading", Weight: 13},
		{ID: ElementAuralTraining, Label: "Aural Training", Weight: 12},
	}
}
