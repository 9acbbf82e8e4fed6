package garden

import (
	"context"
	"time"
)

// Store describes the persistence operations the service requires.
// Implementations translate storage-level uniqueness violations into
// CONFLICT errors; duplicate prevention is never a read-then-write
// check in this layer.
type Store interface {
	Users() UserStore
	Gardens() GardenStore
	Memberships() MembershipStore
	Events() EventStore
	Tasks() TaskStore
	Messages() MessageStore
	Notifications() NotificationStore
	Invitations() InvitationStore
	GardenerRequests() GardenerRequestStore
	VolunteerRequests() VolunteerRequestStore
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role string
}

// ProfilePatch is a partial update of a user's own profile fields.
// Email, role and password never change through it.
type ProfilePatch struct {
	Name    *string
	Phone   *string
	Zipcode *string
	Address *string
}

// UserStore manages accounts. List returns active accounts only,
// newest first.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]*User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error)
	AdminIDs(ctx context.Context) ([]string, error)
	SetPresence(ctx context.Context, id string, online bool, at time.Time) error
}

// GardenStore manages gardens. List returns active gardens only,
// newest first.
type GardenStore interface {
	Create(ctx context.Context, g *Garden) error
	FindByID(ctx context.Context, id string) (*Garden, error)
	FindByAddress(ctx context.Context, address string) (*Garden, error)
	List(ctx context.Context) ([]*Garden, error)
}

// MembershipStore manages the garden-gardener and garden-volunteer
// link collections.
type MembershipStore interface {
	AddGardener(ctx context.Context, gardenID, userID string) error
	AddVolunteer(ctx context.Context, gardenID, userID string) error
	IsGardener(ctx context.Context, userID, gardenID string) (bool, error)
	IsVolunteer(ctx context.Context, userID, gardenID string) (bool, error)
	GardenIDsForGardener(ctx context.Context, userID string) ([]string, error)
	GardenerIDs(ctx context.Context, gardenID string) ([]string, error)
	VolunteerIDs(ctx context.Context, gardenID string) ([]string, error)
	CountGardeners(ctx context.Context, gardenID string) (int, error)
}

// EventFilter narrows event listings.
type EventFilter struct {
	GardenID string
	Type     string
	// From excludes events dated before it when non-zero.
	From time.Time
}

// EventPatch is a partial event update.
type EventPatch struct {
	Title           *string
	Type            *string
	Description     *string
	Date            *time.Time
	StartTime       *string
	EndTime         *string
	Location        Patch[string]
	MaxParticipants Patch[int]
}

// EventStore manages events and registrations. Register relies on a
// unique {eventId,userId} constraint and reports duplicates as CONFLICT.
type EventStore interface {
	Create(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Register(ctx context.Context, eventID, userID string) error
	Unregister(ctx context.Context, eventID, userID string) error
	CountRegistrations(ctx context.Context, eventID string) (int, error)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	AssignedTo string
	GardenID   string
	Status     string
}

// TaskPatch is a partial task update.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     Patch[time.Time]
}

// TaskStore manages tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, f TaskFilter) ([]*Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*Task, error)
	Delete(ctx context.Context, id string) error
}

// MessageStore manages direct messages.
type MessageStore interface {
	Create(ctx context.Context, m *Message) error
	Conversation(ctx context.Context, userID, peerID string) ([]*Message, error)
	MarkConversationRead(ctx context.Context, fromUserID, toUserID string, at time.Time) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UserID string
	IsRead *bool
	Type   string
	Limit  int
	Offset int
}

// NotificationStore manages notification rows. CreateMany writes rows
// independently with no atomicity guarantee across the batch.
type NotificationStore interface {
	Create(ctx context.Context, n *Notification) error
	CreateMany(ctx context.Context, ns []*Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, f NotificationFilter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// InvitationFilter narrows invitation listings.
type InvitationFilter struct {
	UserID string
	Status string
}

// InvitationStore manages garden invitations. Create relies on a
// partial unique constraint over pending {gardenId,userId} pairs.
type InvitationStore interface {
	Create(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	List(ctx context.Context, f InvitationFilter) ([]*Invitation, error)
	SetStatus(ctx context.Context, id, status string) (*Invitation, error)
}

// GardenerRequestFilter narrows gardener-request listings.
type GardenerRequestFilter struct {
	RequesterID string
	Status      string
	RequestType string
}

// GardenerRequestPatch is a partial gardener-request update.
type GardenerRequestPatch struct {
	Title       *string
	Description *string
	RequestType *string
	Status      *string
	Notes       *string
}

// GardenerRequestStore manages gardener resource requests.
type GardenerRequestStore interface {
	Create(ctx context.Context, r *GardenerRequest) error
	FindByID(ctx context.Context, id string) (*GardenerRequest, error)
	List(ctx context.Context, f GardenerRequestFilter) ([]*GardenerRequest, error)
	Update(ctx context.Context, id string, patch GardenerRequestPatch) (*GardenerRequest, error)
}

// VolunteerRequestFilter narrows volunteer-request listings.
type VolunteerRequestFilter struct {
	GardenID string
	Status   string
}

// VolunteerRequestStore manages volunteer-help requests. Join relies
// on a unique {requestId,userId} constraint; Fill marks the request
// filled and records which volunteer took it.
type VolunteerRequestStore interface {
	Create(ctx context.Context, r *VolunteerRequest) error
	FindByID(ctx context.Context, id string) (*VolunteerRequest, error)
	List(ctx context.Context, f VolunteerRequestFilter) ([]*VolunteerRequest, error)
	Join(ctx context.Context, requestID, userID string) error
	Fill(ctx context.Context, id, volunteerID string) (*VolunteerRequest, error)
}
