package repository

import (
	"context"
	"database/sql"
	"errors"
	"events-platform/data/models"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// ErrNoRows is returned by lookups that matched nothing. Callers translate it
// into the domain not-found error with context about what was missing.
var ErrNoRows = errors.New("no matching rows")

// ErrDuplicate is returned when an insert trips a unique constraint, e.g. a
// second participation request for the same (requester, event) pair.
var ErrDuplicate = errors.New("duplicate record")

type DBRepo interface {
	Connection() *sql.DB
	RunMigrations(dbName string) error

	Create(m models.Model) (id int64, err error)
	Update(m models.Model) error
	Delete(m models.Model) error
	GetModelByID(m models.Model, id int64) (models.Model, error)
	GetUserByID(id int64) (models.User, error)
	GetCategoryByID(id int64) (models.Category, error)
	UserExists(id int64) (bool, error)
	Users(ctx context.Context, ids []int64, limit, offset int) ([]models.User, error)
	UpdateCategory(ctx context.Context, c models.Category) error

	GetEventByID(ctx context.Context, id int64) (models.Event, error)
	UpdateEvent(ctx context.Context, e models.Event) error
	EventsByInitiator(ctx context.Context, initiatorID int64, limit, offset int) ([]models.Event, error)
	EventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	Categories(ctx context.Context, limit, offset int) ([]models.Category, error)
	SearchEvents(ctx context.Context, f EventFilter, orderBy string, limit, offset int) ([]models.Event, error)
	SearchEventsAll(ctx context.Context, f EventFilter) ([]models.Event, error)

	RequestsByRequester(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error)
	RequestsByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error)
	RequestByIDAndRequester(ctx context.Context, id, requesterID int64) (models.ParticipationRequest, error)
	SetRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (models.ParticipationRequest, error)
	CountConfirmedBatch(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
	InEventTx(ctx context.Context, fn func(tx EventTx) error) error

	CreateHit(ctx context.Context, h models.EndpointHit) (int64, error)
	ViewStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStat, error)

	CreateCompilation(ctx context.Context, c models.Compilation, eventIDs []int64) (int64, error)
	CompilationEventIDs(ctx context.Context, compilationID int64) ([]int64, error)
}

type SqlRepo struct {
	DB *sql.DB
}

func (sr *SqlRepo) Connection() *sql.DB {
	return sr.DB
}

func (sr *SqlRepo) RunMigrations(dbName string) error {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("failed to get current file path")
	}

	dir := filepath.Dir(filename)
	migrationsDir := filepath.Join(dir, "../migrations")
	// Convert backslashes to forward slashes for Windows compatibility
	migrationsDir = strings.ReplaceAll(migrationsDir, "\\", "/")

	log.Printf("Resolved migrations directory: %s", migrationsDir)

	driver, err := migratepgx.WithInstance(sr.DB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	log.Println("Migrations complete")
	return nil
}

// Create inserts a model into the corresponding db table and returns id of the
// newly created record.
func (sr *SqlRepo) Create(m models.Model) (id int64, err error) {
	vals := models.GetValsFromModel(m)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		m.TableName(),
		strings.Join(m.ColumnNames(), ", "),
		placeholders(len(vals)))

	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("error preparing query: %v", err)
	}
	defer stmt.Close()

	row := stmt.QueryRow(vals...)
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("error executing query: %v", err)
	}

	return id, nil
}

func (sr *SqlRepo) Update(m models.Model) error {
	columns := m.ColumnNames()

	setClause := make([]string, len(columns))
	for i, c := range columns {
		setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		m.TableName(),
		strings.Join(setClause, ", "),
		len(columns)+1)

	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("error preparing query: %v", err)
	}
	defer stmt.Close()

	vals := models.GetValsFromModel(m)
	vals = append(vals, m.GetID())
	if _, err := stmt.Exec(vals...); err != nil {
		return fmt.Errorf("error executing query: %v", err)
	}
	return nil
}

func (sr *SqlRepo) Delete(m models.Model) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.TableName())
	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(m.GetID()); err != nil {
		return fmt.Errorf("error deleting record: %v", err)
	}
	return nil
}

// GetModelByID retrieves a model from the db by its ID and returns it. The
// model must be passed as a pointer to the desired model type.
func (sr *SqlRepo) GetModelByID(m models.Model, id int64) (models.Model, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", m.TableName())
	r := sr.DB.QueryRow(query, id)

	if err := models.ScanRowToModel(m, r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	return m, nil
}

func (sr *SqlRepo) GetUserByID(id int64) (models.User, error) {
	model, err := sr.GetModelByID(&models.User{}, id)
	if err != nil {
		return models.User{}, err
	}

	user, ok := model.(*models.User)
	if !ok {
		return models.User{}, fmt.Errorf("type assertion to User failed")
	}

	return *user, nil
}

func (sr *SqlRepo) GetCategoryByID(id int64) (models.Category, error) {
	model, err := sr.GetModelByID(&models.Category{}, id)
	if err != nil {
		return models.Category{}, err
	}

	category, ok := model.(*models.Category)
	if !ok {
		return models.Category{}, fmt.Errorf("type assertion to Category failed")
	}

	return *category, nil
}

func (sr *SqlRepo) UserExists(id int64) (bool, error) {
	var exists bool
	err := sr.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %v", err)
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := 1; i <= n; i++ {
		ph[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(ph, ", ")
}
