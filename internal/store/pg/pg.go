// Package pg implements the garden.Store contracts on PostgreSQL via
// database/sql and the pgx stdlib driver.
package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"grow104.org/internal/apperr"
	"grow104.org/internal/garden"
)

type Store struct {
	db *sql.DB
}

var _ garden.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() garden.UserStore                         { return &users{s.db} }
func (s *Store) Gardens() garden.GardenStore                     { return &gardens{s.db} }
func (s *Store) Memberships() garden.MembershipStore             { return &memberships{s.db} }
func (s *Store) Events() garden.EventStore                       { return &events{s.db} }
func (s *Store) Tasks() garden.TaskStore                         { return &tasks{s.db} }
func (s *Store) Messages() garden.MessageStore                   { return &messages{s.db} }
func (s *Store) Notifications() garden.NotificationStore         { return &notifications{s.db} }
func (s *Store) Invitations() garden.InvitationStore             { return &invitations{s.db} }
func (s *Store) GardenerRequests() garden.GardenerRequestStore   { return &gardenerRequests{s.db} }
func (s *Store) VolunteerRequests() garden.VolunteerRequestStore { return &volunteerRequests{s.db} }

const uniqueViolation = "23505"

// translateUnique maps a unique-constraint violation onto the CONFLICT
// error the handlers expect. Duplicate detection lives in the schema,
// not in read-then-write checks.
func translateUnique(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.New(apperr.KindConflict, message)
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, what+" not found")
	}
	return err
}
