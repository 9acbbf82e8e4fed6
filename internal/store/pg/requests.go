package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"grow104.org/internal/garden"
	"grow104.org/internal/ids"
)

type invitations struct {
	db *sql.DB
}

const invitationColumns = `id, garden_id, user_id, invited_by, role, status, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (*garden.Invitation, error) {
	var inv garden.Invitation
	err := row.Scan(&inv.ID, &inv.GardenID, &inv.UserID, &inv.InvitedBy, &inv.Role,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *invitations) Create(ctx context.Context, inv *garden.Invitation) error {
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = garden.InvitationPending
	}
	_, err := s.db.ExecContext(ctx, `
		insert into invitations(id, garden_id, user_id, invited_by, role, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.GardenID, inv.UserID, inv.InvitedBy, string(inv.Role), inv.Status,
		inv.CreatedAt, inv.UpdatedAt)
	return translateUnique(err, "Invitation already exists")
}

func (s *invitations) FindByID(ctx context.Context, id string) (*garden.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+invitationColumns+` from invitations where id=$1`, id)
	inv, err := scanInvitation(row)
	if err != nil {
		return nil, notFound(err, "Invitation")
	}
	return inv, nil
}

func (s *invitations) List(ctx context.Context, f garden.InvitationFilter) ([]*garden.Invitation, error) {
	var where []string
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, "user_id=$"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status=$"+strconv.Itoa(len(args)))
	}
	query := `select ` + invitationColumns + ` from invitations`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by created_at desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *invitations) SetStatus(ctx context.Context, id, status string) (*garden.Invitation, error) {
	row := s.db.QueryRowContext(ctx, `
		update invitations set status=$2, updated_at=$3
		where id=$1 returning `+invitationColumns, id, status, time.Now().UTC())
	inv, err := scanInvitation(row)
	if err != nil {
		return nil, notFound(err, "Invitation")
	}
	return inv, nil
}

type gardenerRequests struct {
	db *sql.DB
}

const gardenerRequestColumns = `id, requester_id, title, description, request_type,
	supply_ids, seedling_ids, coalesce(season,''), quantity, coalesce(assistance_type,''),
	household_size, coalesce(task,''), coalesce(notes,''), status, created_at, updated_at`

func scanGardenerRequest(row interface{ Scan(...any) error }) (*garden.GardenerRequest, error) {
	var r garden.GardenerRequest
	var supplies, seedlings []byte
	var quantity, household sql.NullInt64
	err := row.Scan(&r.ID, &r.RequesterID, &r.Title, &r.Description, &r.RequestType,
		&supplies, &seedlings, &r.Season, &quantity, &r.AssistanceType,
		&household, &r.Task, &r.Notes, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(supplies) > 0 {
		if err := json.Unmarshal(supplies, &r.SupplyIDs); err != nil {
			return nil, err
		}
	}
	if len(seedlings) > 0 {
		if err := json.Unmarshal(seedlings, &r.SeedlingIDs); err != nil {
			return nil, err
		}
	}
	if quantity.Valid {
		v := int(quantity.Int64)
		r.Quantity = &v
	}
	if household.Valid {
		v := int(household.Int64)
		r.HouseholdSize = &v
	}
	return &r, nil
}

func idsJSON(ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return json.Marshal(ids)
}

func (s *gardenerRequests) Create(ctx context.Context, r *garden.GardenerRequest) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = garden.RequestStatusPending
	}
	supplies, err := idsJSON(r.SupplyIDs)
	if err != nil {
		return err
	}
	seedlings, err := idsJSON(r.SeedlingIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into gardener_requests(id, requester_id, title, description, request_type,
			supply_ids, seedling_ids, season, quantity, assistance_type, household_size,
			task, notes, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, nullif($8,''), $9, nullif($10,''), $11,
			nullif($12,''), nullif($13,''), $14, $15, $16)
	`, r.ID, r.RequesterID, r.Title, r.Description, r.RequestType,
		supplies, seedlings, r.Season, r.Quantity, r.AssistanceType, r.HouseholdSize,
		r.Task, r.Notes, r.Status, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *gardenerRequests) FindByID(ctx context.Context, id string) (*garden.GardenerRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+gardenerRequestColumns+` from gardener_requests where id=$1`, id)
	r, err := scanGardenerRequest(row)
	if err != nil {
		return nil, notFound(err, "Request")
	}
	return r, nil
}

func (s *gardenerRequests) List(ctx context.Context, f garden.GardenerRequestFilter) ([]*garden.GardenerRequest, error) {
	var where []string
	var args []any
	if f.RequesterID != "" {
		args = append(args, f.RequesterID)
		where = append(where, "requester_id=$"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status=$"+strconv.Itoa(len(args)))
	}
	if f.RequestType != "" {
		args = append(args, f.RequestType)
		where = append(where, "request_type=$"+strconv.Itoa(len(args)))
	}
	query := `select ` + gardenerRequestColumns + ` from gardener_requests`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by created_at desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.GardenerRequest
	for rows.Next() {
		r, err := scanGardenerRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *gardenerRequests) Update(ctx context.Context, id string, patch garden.GardenerRequestPatch) (*garden.GardenerRequest, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.RequestType != nil {
		add("request_type", *patch.RequestType)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := `update gardener_requests set ` + strings.Join(sets, ", ") +
		` where id=$` + strconv.Itoa(len(args)) + ` returning ` + gardenerRequestColumns

	row := s.db.QueryRowContext(ctx, query, args...)
	r, err := scanGardenerRequest(row)
	if err != nil {
		return nil, notFound(err, "Request")
	}
	return r, nil
}

type volunteerRequests struct {
	db *sql.DB
}

const volunteerRequestColumns = `id, garden_id, requester_id, title, description, date,
	status, volunteer_id, created_at`

func scanVolunteerRequest(row interface{ Scan(...any) error }) (*garden.VolunteerRequest, error) {
	var r garden.VolunteerRequest
	var volunteer sql.NullString
	err := row.Scan(&r.ID, &r.GardenID, &r.RequesterID, &r.Title, &r.Description,
		&r.Date, &r.Status, &volunteer, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if volunteer.Valid {
		v := volunteer.String
		r.VolunteerID = &v
	}
	return &r, nil
}

func (s *volunteerRequests) Create(ctx context.Context, r *garden.VolunteerRequest) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = garden.VolunteerRequestOpen
	}
	_, err := s.db.ExecContext(ctx, `
		insert into volunteer_requests(id, garden_id, requester_id, title, description, date,
			status, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.GardenID, r.RequesterID, r.Title, r.Description, r.Date, r.Status, r.CreatedAt)
	return err
}

func (s *volunteerRequests) FindByID(ctx context.Context, id string) (*garden.VolunteerRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+volunteerRequestColumns+` from volunteer_requests where id=$1`, id)
	r, err := scanVolunteerRequest(row)
	if err != nil {
		return nil, notFound(err, "Request")
	}
	return r, nil
}

func (s *volunteerRequests) List(ctx context.Context, f garden.VolunteerRequestFilter) ([]*garden.VolunteerRequest, error) {
	var where []string
	var args []any
	if f.GardenID != "" {
		args = append(args, f.GardenID)
		where = append(where, "garden_id=$"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status=$"+strconv.Itoa(len(args)))
	}
	query := `select ` + volunteerRequestColumns + ` from volunteer_requests`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by created_at desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.VolunteerRequest
	for rows.Next() {
		r, err := scanVolunteerRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *volunteerRequests) Join(ctx context.Context, requestID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into volunteer_request_volunteers(request_id, user_id) values ($1, $2)
	`, requestID, userID)
	return translateUnique(err, "Already joined this request")
}

func (s *volunteerRequests) Fill(ctx context.Context, id, volunteerID string) (*garden.VolunteerRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		update volunteer_requests set status='filled', volunteer_id=$2
		where id=$1 returning `+volunteerRequestColumns, id, volunteerID)
	r, err := scanVolunteerRequest(row)
	if err != nil {
		return nil, notFound(err, "Request")
	}
	return r, nil
}
