package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/imamik/subnetctl/internal/config"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures Open.
type Options struct {
	Driver string
	DSN    string
	Table  string
	Logger logr.Logger
}

// Store implements subnet.Repository.
type Store struct {
	db    *gorm.DB
	table string
	now   func() time.Time
}

var _ subnet.Repository = (*Store)(nil)

// Open connects to the database and migrates the subnet table. Missing or
// unknown settings are reported as a config.ConfigurationError.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(log),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	if opts.Driver == DriverSQLite {
		// SQLite allows one writer; a single connection queues writers instead
		// of failing them with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, &Error{Op: "open", Err: err}
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Store{
		db:    db,
		table: opts.Table,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if err := s.tx(ctx).AutoMigrate(&record{}); err != nil {
		_ = s.Close()
		return nil, &Error{Op: "migrate", Err: err}
	}
	return s, nil
}

func validateOptions(opts Options) error {
	cfgErr := &config.ConfigurationError{}
	switch opts.Driver {
	case DriverSQLite, DriverPostgres:
	case "":
		cfgErr.Missing = append(cfgErr.Missing, "SUBNET_DATABASE_DRIVER")
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "SUBNET_DATABASE_DRIVER")
	}
	if opts.DSN == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SUBNET_DATABASE_DSN")
	}
	if opts.Table == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SUBNET_DATABASE_TABLE")
	}
	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// tx scopes a statement to ctx and the configured table.
func (s *Store) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Insert stores a new subnet and returns its id.
func (s *Store) Insert(ctx context.Context, sn *subnet.Subnet) (string, error) {
	if !sn.Status.Valid() {
		return "", &subnet.InvariantViolation{SubnetID: sn.ID, Reason: fmt.Sprintf("cannot insert with status %q", sn.Status)}
	}
	if sn.ID == "" {
		sn.ID = newID()
	}
	if sn.CreatedTime.IsZero() {
		sn.CreatedTime = s.now().Truncate(time.Microsecond)
	}
	if sn.Validators == nil {
		sn.Validators = []subnet.Validator{}
	}

	rec := recordFromSubnet(sn)
	rec.UpdatedAt = s.now()
	if err := s.tx(ctx).Create(rec).Error; err != nil {
		return "", &Error{Op: "insert", Err: err}
	}
	return sn.ID, nil
}

// FindByID loads one subnet.
func (s *Store) FindByID(ctx context.Context, id string) (*subnet.Subnet, error) {
	var rec record
	err := s.tx(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", subnet.ErrNotFound, id)
	}
	if err != nil {
		return nil, &Error{Op: "find", Err: err}
	}
	return rec.toSubnet(), nil
}

// FindMostRecentActive returns the newest non-deleted subnet.
func (s *Store) FindMostRecentActive(ctx context.Context) (*subnet.Subnet, error) {
	var rec record
	err := s.tx(ctx).
		Where("status <> ?", string(subnet.StatusDeleted)).
		Order("created_time DESC").
		Order("id DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, subnet.ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "find most recent", Err: err}
	}
	return rec.toSubnet(), nil
}

// List returns subnets newest first.
func (s *Store) List(ctx context.Context, includeDeleted bool, limit int) ([]*subnet.Subnet, error) {
	q := s.tx(ctx).Order("created_time DESC").Order("id DESC")
	if !includeDeleted {
		q = q.Where("status <> ?", string(subnet.StatusDeleted))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []record
	if err := q.Find(&recs).Error; err != nil {
		return nil, &Error{Op: "list", Err: err}
	}
	out := make([]*subnet.Subnet, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toSubnet())
	}
	return out, nil
}

// UpdateFields writes only the columns named by u.
func (s *Store) UpdateFields(ctx context.Context, id string, u subnet.Update) error {
	if u.Status != nil && !u.Status.Valid() {
		return &subnet.InvariantViolation{SubnetID: id, Reason: fmt.Sprintf("cannot update to status %q", *u.Status)}
	}
	if u.Empty() {
		_, err := s.FindByID(ctx, id)
		return err
	}

	values := record{UpdatedAt: s.now()}
	columns := []string{"updated_at"}
	if u.Status != nil {
		values.Status = string(*u.Status)
		columns = append(columns, "status")
	}
	if u.ServerIP != nil {
		values.Server.IP = *u.ServerIP
		columns = append(columns, "server_ip")
	}
	if u.Validators != nil {
		values.Validators = u.Validators
		columns = append(columns, "validators")
	}

	q := s.tx(ctx).Model(&record{}).Where("id = ?", id)
	if u.IfStatus != "" {
		q = q.Where("status = ?", string(u.IfStatus))
	}
	res := q.Select(columns).Updates(&values)
	if res.Error != nil {
		return &Error{Op: "update", Err: res.Error}
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: subnet %s is %s, expected %s", subnet.ErrConflict, id, current.Status, u.IfStatus)
}
