// Package garden holds the domain entities of the community-garden
// service and the persistence contracts its handlers depend on.
package garden

import (
	"time"

	"grow104.org/internal/auth"
)

// User statuses mirror presence tracking; accounts are soft-disabled
// via IsActive rather than deleted.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         auth.Role  `json:"role"`
	Address      string     `json:"address,omitempty"`
	Zipcode      string     `json:"zipcode,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

const (
	GardenStatusActive   = "active"
	GardenStatusInactive = "inactive"
)

type Garden struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Zipcode   string    `json:"zipcode,omitempty"`
	OwnerID   string    `json:"ownerId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID              string     `json:"id"`
	GardenID        string     `json:"gardenId"`
	CreatedBy       string     `json:"createdBy"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Date            time.Time  `json:"date"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	Location        *string    `json:"location,omitempty"`
	MaxParticipants *int       `json:"maxParticipants,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

type Task struct {
	ID          string     `json:"id"`
	GardenID    string     `json:"gardenId"`
	AssignedTo  string     `json:"assignedTo"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Message struct {
	ID          string     `json:"id"`
	FromUserID  string     `json:"fromUserId"`
	ToUserID    string     `json:"toUserId"`
	Subject     string     `json:"subject"`
	Content     string     `json:"content"`
	RequestType string     `json:"requestType,omitempty"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

type Invitation struct {
	ID        string    `json:"id"`
	GardenID  string    `json:"gardenId"`
	UserID    string    `json:"userId"`
	InvitedBy string    `json:"invitedBy"`
	Role      auth.Role `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

type GardenerRequest struct {
	ID             string    `json:"id"`
	RequesterID    string    `json:"requesterId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequestType    string    `json:"requestType"`
	SupplyIDs      []string  `json:"supplyIds,omitempty"`
	SeedlingIDs    []string  `json:"seedlingIds,omitempty"`
	Season         string    `json:"season,omitempty"`
	Quantity       *int      `json:"quantity,omitempty"`
	AssistanceType string    `json:"assistanceType,omitempty"`
	HouseholdSize  *int      `json:"householdSize,omitempty"`
	Task           string    `json:"task,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

const (
	VolunteerRequestOpen      = "open"
	VolunteerRequestFilled    = "filled"
	VolunteerRequestCancelled = "cancelled"
)

type VolunteerRequest struct {
	ID          string    `json:"id"`
	GardenID    string    `json:"gardenId"`
	RequesterID string    `json:"requesterId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	VolunteerID *string   `json:"volunteerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Patch is a three-state update value: not set, explicitly null, or a
// concrete value. It lets partial updates clear nullable columns
// without clobbering fields the caller never mentioned.
type Patch[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// PatchValue builds a set-to-value patch.
func PatchValue[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: v}
}

// PatchNull builds a set-to-null patch.
func PatchNull[T any]() Patch[T] {
	return Patch[T]{Set: true, Null: true}
}
