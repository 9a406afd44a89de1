package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	settingsDatamodel "github.com/danekja/ymanager/internal/core/datamodel/settings"
	"github.com/danekja/ymanager/internal/policy"
	"github.com/danekja/ymanager/internal/user"
)

// PolicyRepository implements the policy.Repository interface using GORM.
type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) policy.Repository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) GetDefaults(ctx context.Context) ([]*policy.Defaults, error) {
	var ms []*settingsDatamodel.DefaultSettings
	if err := r.db.WithContext(ctx).Order("role ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	result := make([]*policy.Defaults, len(ms))
	for i, m := range ms {
		result[i] = policy.DefaultsFromDataModel(m)
	}
	return result, nil
}

func (r *PolicyRepository) GetDefaultsForRole(ctx context.Context, role user.Role) (*policy.Defaults, error) {
	var m settingsDatamodel.DefaultSettings
	err := r.db.WithContext(ctx).Where("role = ?", string(role)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrDefaultsNotFound
		}
		return nil, err
	}
	return policy.DefaultsFromDataModel(&m), nil
}

func (r *PolicyRepository) UpsertDefaults(ctx context.Context, d *policy.Defaults) error {
	m := policy.DefaultsToDataModel(d)
	m.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vacation_days_total", "overtime_hours_budget", "notification_lead_time_ns", "updated_at",
		}),
	}).Create(m).Error
}

func (r *PolicyRepository) GetByUserID(ctx context.Context, userID int64) (*policy.Policy, error) {
	var m settingsDatamodel.UserPolicy
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrPolicyNotFound
		}
		return nil, err
	}
	return policy.FromDataModel(&m), nil
}

// Save writes the whole snapshot, inserting or replacing the user's row.
func (r *PolicyRepository) Save(ctx context.Context, p *policy.Policy) error {
	m := policy.ToDataModel(p)
	m.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vacation_days_total", "overtime_hours_budget", "notification_lead_time_ns", "updated_at",
		}),
	}).Create(m).Error
}
