package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/calendar"
	calendarDatamodel "github.com/danekja/ymanager/internal/core/datamodel/calendar"
)

// EntryRepository implements the calendar.Repository interface using GORM.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) calendar.Repository {
	return &EntryRepository{db: db}
}

// InTx runs fn inside a serializable transaction. On postgres it first takes
// an advisory lock keyed by the owner id, serializing all writes that touch
// one user's balance.
func (r *EntryRepository) InTx(ctx context.Context, ownerID int64, fn func(calendar.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", ownerID).Error; err != nil {
				return err
			}
		}
		return fn(&EntryRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (r *EntryRepository) Create(ctx context.Context, e *calendar.Entry) error {
	m := calendar.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			// the partial unique index on (owner, date) caught a racing sibling
			return internal.ErrOverlappingEntry
		}
		return err
	}
	e.ID = m.ID
	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*calendar.Entry, error) {
	var m calendarDatamodel.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, calendar.ErrEntryNotFound
		}
		return nil, err
	}
	return calendar.FromDataModel(&m), nil
}

func (r *EntryRepository) Update(ctx context.Context, e *calendar.Entry) error {
	m := calendar.ToDataModel(e)
	result := r.db.WithContext(ctx).Model(&calendarDatamodel.Entry{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"date":              m.Date,
			"from_minute":       m.FromMinute,
			"to_minute":         m.ToMinute,
			"hours":             m.Hours,
			"status":            m.Status,
			"approver_id":       m.ApproverID,
			"status_changed_at": m.StatusChangedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return internal.ErrOverlappingEntry
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return calendar.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&calendarDatamodel.Entry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return calendar.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) ListWindow(ctx context.Context, ownerID int64, from, to time.Time, status *internal.Status) ([]*calendar.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("date >= ? AND date <= ?", from, to)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var ms []*calendarDatamodel.Entry
	err := query.Order("date ASC, created_at ASC").Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return calendar.FromDataModelSlice(ms), nil
}

func (r *EntryRepository) ListActiveOnDate(ctx context.Context, ownerID int64, date time.Time) ([]*calendar.Entry, error) {
	var ms []*calendarDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND date = ?", ownerID, date).
		Where("status IN ?", []string{string(internal.StatusPending), string(internal.StatusAccepted)}).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return calendar.FromDataModelSlice(ms), nil
}

func (r *EntryRepository) ListActiveByOwner(ctx context.Context, ownerID int64) ([]*calendar.Entry, error) {
	var ms []*calendarDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("status IN ?", []string{string(internal.StatusPending), string(internal.StatusAccepted)}).
		Order("date ASC, created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return calendar.FromDataModelSlice(ms), nil
}

func (r *EntryRepository) ListByKinds(ctx context.Context, kinds []calendar.Kind, status *internal.Status) ([]*calendar.Entry, error) {
	kindStrings := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrings[i] = string(k)
	}

	query := r.db.WithContext(ctx).Where("kind IN ?", kindStrings)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var ms []*calendarDatamodel.Entry
	err := query.Order("created_at ASC").Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return calendar.FromDataModelSlice(ms), nil
}

// IsSerializationFailure recognizes the postgres serialization and deadlock
// abort codes that are safe to retry.
func (r *EntryRepository) IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
