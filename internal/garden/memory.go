package garden

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
	"grow104.org/internal/ids"
)

// MemoryStore is an in-memory Store used by tests and as the fallback
// when no database DSN is configured. It enforces the same uniqueness
// rules the relational schema does, so handler behavior matches.
type MemoryStore struct {
	mu sync.RWMutex

	users             map[string]*User
	usersByEmail      map[string]string
	gardens           map[string]*Garden
	gardeners         map[string]map[string]bool // gardenID -> userID set
	volunteers        map[string]map[string]bool
	events            map[string]*Event
	registrations     map[string]map[string]bool // eventID -> userID set
	tasks             map[string]*Task
	messages          []*Message
	notifications     map[string]*Notification
	notificationOrder []string
	invitations       map[string]*Invitation
	gardenerRequests  map[string]*GardenerRequest
	volunteerRequests map[string]*VolunteerRequest
	joins             map[string]map[string]bool // requestID -> userID set
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:             make(map[string]*User),
		usersByEmail:      make(map[string]string),
		gardens:           make(map[string]*Garden),
		gardeners:         make(map[string]map[string]bool),
		volunteers:        make(map[string]map[string]bool),
		events:            make(map[string]*Event),
		registrations:     make(map[string]map[string]bool),
		tasks:             make(map[string]*Task),
		notifications:     make(map[string]*Notification),
		invitations:       make(map[string]*Invitation),
		gardenerRequests:  make(map[string]*GardenerRequest),
		volunteerRequests: make(map[string]*VolunteerRequest),
		joins:             make(map[string]map[string]bool),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Users() UserStore                         { return (*memUsers)(s) }
func (s *MemoryStore) Gardens() GardenStore                     { return (*memGardens)(s) }
func (s *MemoryStore) Memberships() MembershipStore             { return (*memMemberships)(s) }
func (s *MemoryStore) Events() EventStore                       { return (*memEvents)(s) }
func (s *MemoryStore) Tasks() TaskStore                         { return (*memTasks)(s) }
func (s *MemoryStore) Messages() MessageStore                   { return (*memMessages)(s) }
func (s *MemoryStore) Notifications() NotificationStore         { return (*memNotifications)(s) }
func (s *MemoryStore) Invitations() InvitationStore             { return (*memInvitations)(s) }
func (s *MemoryStore) GardenerRequests() GardenerRequestStore   { return (*memGardenerRequests)(s) }
func (s *MemoryStore) VolunteerRequests() VolunteerRequestStore { return (*memVolunteerRequests)(s) }

func notFound(what string) error {
	return apperr.New(apperr.KindNotFound, what+" not found")
}

// Users ---------------------------------------------------------------

type memUsers MemoryStore

func (s *memUsers) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, exists := s.usersByEmail[email]; exists {
		return apperr.New(apperr.KindConflict, "User already exists")
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	clone := *u
	s.users[u.ID] = &clone
	s.usersByEmail[email] = u.ID
	return nil
}

func (s *memUsers) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	clone := *u
	return &clone, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, notFound("User")
	}
	clone := *s.users[id]
	return &clone, nil
}

func (s *memUsers) List(_ context.Context, f UserFilter) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memUsers) UpdateProfile(_ context.Context, id string, patch ProfilePatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Zipcode != nil {
		u.Zipcode = *patch.Zipcode
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (s *memUsers) AdminIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, u := range s.users {
		if u.Role == auth.RoleAdmin && u.IsActive {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memUsers) SetPresence(_ context.Context, id string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return notFound("User")
	}
	u.IsOnline = online
	u.LastSeen = &at
	u.UpdatedAt = at
	return nil
}

// Gardens -------------------------------------------------------------

type memGardens MemoryStore

func (s *memGardens) Create(_ context.Context, g *Garden) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = ids.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Status == "" {
		g.Status = GardenStatusActive
	}
	clone := *g
	s.gardens[g.ID] = &clone
	return nil
}

func (s *memGardens) FindByID(_ context.Context, id string) (*Garden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gardens[id]
	if !ok {
		return nil, notFound("Garden")
	}
	clone := *g
	return &clone, nil
}

func (s *memGardens) FindByAddress(_ context.Context, address string) (*Garden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.gardens {
		if strings.EqualFold(g.Address, address) {
			clone := *g
			return &clone, nil
		}
	}
	return nil, notFound("Garden")
}

func (s *memGardens) List(_ context.Context) ([]*Garden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Garden
	for _, g := range s.gardens {
		if g.Status != GardenStatusActive {
			continue
		}
		clone := *g
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Memberships ---------------------------------------------------------

type memMemberships MemoryStore

func addLink(links map[string]map[string]bool, gardenID, userID string) {
	set, ok := links[gardenID]
	if !ok {
		set = make(map[string]bool)
		links[gardenID] = set
	}
	set[userID] = true
}

func (s *memMemberships) AddGardener(_ context.Context, gardenID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gardeners[gardenID][userID] {
		return apperr.New(apperr.KindConflict, "User is already assigned to this garden")
	}
	addLink(s.gardeners, gardenID, userID)
	return nil
}

func (s *memMemberships) AddVolunteer(_ context.Context, gardenID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.volunteers[gardenID][userID] {
		return apperr.New(apperr.KindConflict, "User is already assigned to this garden")
	}
	addLink(s.volunteers, gardenID, userID)
	return nil
}

func (s *memMemberships) IsGardener(_ context.Context, userID, gardenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gardeners[gardenID][userID], nil
}

func (s *memMemberships) IsVolunteer(_ context.Context, userID, gardenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volunteers[gardenID][userID], nil
}

func (s *memMemberships) GardenIDsForGardener(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for gardenID, set := range s.gardeners {
		if set[userID] {
			out = append(out, gardenID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memMemberships) GardenerIDs(_ context.Context, gardenID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memberIDs(s.gardeners[gardenID]), nil
}

func (s *memMemberships) VolunteerIDs(_ context.Context, gardenID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memberIDs(s.volunteers[gardenID]), nil
}

func memberIDs(set map[string]bool) []string {
	var out []string
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *memMemberships) CountGardeners(_ context.Context, gardenID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gardeners[gardenID]), nil
}

// Events --------------------------------------------------------------

type memEvents MemoryStore

func (s *memEvents) Create(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = ids.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	clone := *e
	s.events[e.ID] = &clone
	return nil
}

func (s *memEvents) FindByID(_ context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("Event")
	}
	clone := *e
	return &clone, nil
}

func (s *memEvents) List(_ context.Context, f EventFilter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Event
	for _, e := range s.events {
		if f.GardenID != "" && e.GardenID != f.GardenID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memEvents) Update(_ context.Context, id string, patch EventPatch) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("Event")
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.StartTime != nil {
		e.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		e.EndTime = *patch.EndTime
	}
	if patch.Location.Set {
		if patch.Location.Null {
			e.Location = nil
		} else {
			loc := patch.Location.Value
			e.Location = &loc
		}
	}
	if patch.MaxParticipants.Set {
		if patch.MaxParticipants.Null {
			e.MaxParticipants = nil
		} else {
			max := patch.MaxParticipants.Value
			e.MaxParticipants = &max
		}
	}
	clone := *e
	return &clone, nil
}

func (s *memEvents) Register(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return notFound("Event")
	}
	if s.registrations[eventID][userID] {
		return apperr.New(apperr.KindConflict, "Already registered for this event")
	}
	addLink(s.registrations, eventID, userID)
	return nil
}

func (s *memEvents) Unregister(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registrations[eventID][userID] {
		return notFound("Registration")
	}
	delete(s.registrations[eventID], userID)
	return nil
}

func (s *memEvents) CountRegistrations(_ context.Context, eventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations[eventID]), nil
}

// Tasks ---------------------------------------------------------------

type memTasks MemoryStore

func (s *memTasks) Create(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	clone := *t
	s.tasks[t.ID] = &clone
	return nil
}

func (s *memTasks) FindByID(_ context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, notFound("Task")
	}
	clone := *t
	return &clone, nil
}

func (s *memTasks) List(_ context.Context, f TaskFilter) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Task
	for _, t := range s.tasks {
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.GardenID != "" && t.GardenID != f.GardenID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return out, nil
}

func (s *memTasks) Update(_ context.Context, id string, patch TaskPatch) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, notFound("Task")
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate.Set {
		if patch.DueDate.Null {
			t.DueDate = nil
		} else {
			due := patch.DueDate.Value
			t.DueDate = &due
		}
	}
	t.UpdatedAt = time.Now().UTC()
	clone := *t
	return &clone, nil
}

func (s *memTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return notFound("Task")
	}
	delete(s.tasks, id)
	return nil
}

// Messages ------------------------------------------------------------

type memMessages MemoryStore

func (s *memMessages) Create(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = ids.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	clone := *m
	s.messages = append(s.messages, &clone)
	return nil
}

func (s *memMessages) Conversation(_ context.Context, userID, peerID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Message
	for _, m := range s.messages {
		if (m.FromUserID == userID && m.ToUserID == peerID) ||
			(m.FromUserID == peerID && m.ToUserID == userID) {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memMessages) MarkConversationRead(_ context.Context, fromUserID, toUserID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.FromUserID == fromUserID && m.ToUserID == toUserID && !m.Read {
			m.Read = true
			readAt := at
			m.ReadAt = &readAt
		}
	}
	return nil
}

func (s *memMessages) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.messages {
		if m.ToUserID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

// Notifications -------------------------------------------------------

type memNotifications MemoryStore

func (s *memNotifications) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(n)
	return nil
}

func (s *memNotifications) insert(n *Notification) {
	if n.ID == "" {
		n.ID = ids.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	clone := *n
	s.notifications[n.ID] = &clone
	s.notificationOrder = append(s.notificationOrder, n.ID)
}

func (s *memNotifications) CreateMany(_ context.Context, ns []*Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range ns {
		s.insert(n)
	}
	return nil
}

func (s *memNotifications) FindByID(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, notFound("Notification")
	}
	clone := *n
	return &clone, nil
}

func (s *memNotifications) List(_ context.Context, f NotificationFilter) ([]*Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Newest first: walk insertion order backwards.
	var matched []*Notification
	for i := len(s.notificationOrder) - 1; i >= 0; i-- {
		n := s.notifications[s.notificationOrder[i]]
		if n == nil || n.UserID != f.UserID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		clone := *n
		matched = append(matched, &clone)
	}
	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (s *memNotifications) MarkRead(_ context.Context, id string) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, notFound("Notification")
	}
	n.IsRead = true
	clone := *n
	return &clone, nil
}

func (s *memNotifications) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memNotifications) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return notFound("Notification")
	}
	delete(s.notifications, id)
	return nil
}

// Invitations ---------------------------------------------------------

type memInvitations MemoryStore

func (s *memInvitations) Create(_ context.Context, inv *Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invitations {
		if existing.GardenID == inv.GardenID && existing.UserID == inv.UserID &&
			existing.Status == InvitationPending {
			return apperr.New(apperr.KindConflict, "Invitation already exists")
		}
	}
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = InvitationPending
	}
	clone := *inv
	s.invitations[inv.ID] = &clone
	return nil
}

func (s *memInvitations) FindByID(_ context.Context, id string) (*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[id]
	if !ok {
		return nil, notFound("Invitation")
	}
	clone := *inv
	return &clone, nil
}

func (s *memInvitations) List(_ context.Context, f InvitationFilter) ([]*Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Invitation
	for _, inv := range s.invitations {
		if f.UserID != "" && inv.UserID != f.UserID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		clone := *inv
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memInvitations) SetStatus(_ context.Context, id, status string) (*Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return nil, notFound("Invitation")
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	clone := *inv
	return &clone, nil
}

// Gardener requests ---------------------------------------------------

type memGardenerRequests MemoryStore

func (s *memGardenerRequests) Create(_ context.Context, r *GardenerRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = ids.New()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	clone := *r
	s.gardenerRequests[r.ID] = &clone
	return nil
}

func (s *memGardenerRequests) FindByID(_ context.Context, id string) (*GardenerRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.gardenerRequests[id]
	if !ok {
		return nil, notFound("Request")
	}
	clone := *r
	return &clone, nil
}

func (s *memGardenerRequests) List(_ context.Context, f GardenerRequestFilter) ([]*GardenerRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*GardenerRequest
	for _, r := range s.gardenerRequests {
		if f.RequesterID != "" && r.RequesterID != f.RequesterID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.RequestType != "" && r.RequestType != f.RequestType {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memGardenerRequests) Update(_ context.Context, id string, patch GardenerRequestPatch) (*GardenerRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.gardenerRequests[id]
	if !ok {
		return nil, notFound("Request")
	}
	if patch.Title != nil {
		r.Title = *patch.Title
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.RequestType != nil {
		r.RequestType = *patch.RequestType
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	r.UpdatedAt = time.Now().UTC()
	clone := *r
	return &clone, nil
}

// Volunteer requests --------------------------------------------------

type memVolunteerRequests MemoryStore

func (s *memVolunteerRequests) Create(_ context.Context, r *VolunteerRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = ids.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = VolunteerRequestOpen
	}
	clone := *r
	s.volunteerRequests[r.ID] = &clone
	return nil
}

func (s *memVolunteerRequests) FindByID(_ context.Context, id string) (*VolunteerRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.volunteerRequests[id]
	if !ok {
		return nil, notFound("Request")
	}
	clone := *r
	return &clone, nil
}

func (s *memVolunteerRequests) List(_ context.Context, f VolunteerRequestFilter) ([]*VolunteerRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*VolunteerRequest
	for _, r := range s.volunteerRequests {
		if f.GardenID != "" && r.GardenID != f.GardenID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memVolunteerRequests) Join(_ context.Context, requestID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.volunteerRequests[requestID]; !ok {
		return notFound("Request")
	}
	if s.joins[requestID][userID] {
		return apperr.New(apperr.KindConflict, "Already joined this request")
	}
	addLink(s.joins, requestID, userID)
	return nil
}

func (s *memVolunteerRequests) Fill(_ context.Context, id, volunteerID string) (*VolunteerRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.volunteerRequests[id]
	if !ok {
		return nil, notFound("Request")
	}
	r.Status = VolunteerRequestFilled
	v := volunteerID
	r.VolunteerID = &v
	clone := *r
	return &clone, nil
}
