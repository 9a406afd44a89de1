package postgres

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/danekja/ymanager/internal/policy"
	"github.com/danekja/ymanager/internal/user"
)

func TestPolicyRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PolicyRepository Suite")
}

type SQLiteUserPolicy struct {
	ID                   int64     `gorm:"primaryKey"`
	UserID               int64     `gorm:"column:user_id;uniqueIndex;not null"`
	VacationDaysTotal    float64   `gorm:"column:vacation_days_total;not null"`
	OvertimeHoursBudget  float64   `gorm:"column:overtime_hours_budget;not null"`
	NotificationLeadTime int64     `gorm:"column:notification_lead_time_ns;not null"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (SQLiteUserPolicy) TableName() string {
	return "user_policy"
}

type SQLiteDefaultSettings struct {
	ID                   int64     `gorm:"primaryKey"`
	Role                 string    `gorm:"column:role;uniqueIndex;not null"`
	VacationDaysTotal    float64   `gorm:"column:vacation_days_total;not null"`
	OvertimeHoursBudget  float64   `gorm:"column:overtime_hours_budget;not null"`
	NotificationLeadTime int64     `gorm:"column:notification_lead_time_ns;not null"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (SQLiteDefaultSettings) TableName() string {
	return "default_settings"
}

var _ = Describe("PolicyRepository", func() {
	var (
		db   *gorm.DB
		repo policy.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteUserPolicy{}, &SQLiteDefaultSettings{})).To(Succeed())

		repo = NewPolicyRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("per-role defaults", func() {
		It("upserts and reads back a role template", func() {
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{
				Role:                 user.RoleEmployee,
				VacationDaysTotal:    20,
				OvertimeHoursBudget:  150,
				NotificationLeadTime: 48 * time.Hour,
			})).To(Succeed())

			d, err := repo.GetDefaultsForRole(ctx, user.RoleEmployee)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.VacationDaysTotal).To(Equal(20.0))
			Expect(d.OvertimeHoursBudget).To(Equal(150.0))
			Expect(d.NotificationLeadTime).To(Equal(48 * time.Hour))
		})

		It("replaces the template on a second upsert instead of duplicating", func() {
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{Role: user.RoleEmployee, VacationDaysTotal: 20})).To(Succeed())
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{Role: user.RoleEmployee, VacationDaysTotal: 25})).To(Succeed())

			all, err := repo.GetDefaults(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].VacationDaysTotal).To(Equal(25.0))
		})

		It("lists defaults ordered by role", func() {
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{Role: user.RoleManager})).To(Succeed())
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{Role: user.RoleAdmin})).To(Succeed())
			Expect(repo.UpsertDefaults(ctx, &policy.Defaults{Role: user.RoleEmployee})).To(Succeed())

			all, err := repo.GetDefaults(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Role).To(Equal(user.RoleAdmin))
			Expect(all[1].Role).To(Equal(user.RoleEmployee))
			Expect(all[2].Role).To(Equal(user.RoleManager))
		})

		It("reports a missing role template", func() {
			_, err := repo.GetDefaultsForRole(ctx, user.RoleManager)
			Expect(err).To(MatchError(policy.ErrDefaultsNotFound))
		})
	})

	Describe("per-user policies", func() {
		It("saves and reads back a snapshot", func() {
			Expect(repo.Save(ctx, &policy.Policy{
				UserID:               7,
				VacationDaysTotal:    22.5,
				OvertimeHoursBudget:  100,
				NotificationLeadTime: 24 * time.Hour,
			})).To(Succeed())

			p, err := repo.GetByUserID(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.VacationDaysTotal).To(Equal(22.5))
			Expect(p.NotificationLeadTime).To(Equal(24 * time.Hour))
		})

		It("overwrites the whole row on a second save", func() {
			Expect(repo.Save(ctx, &policy.Policy{UserID: 7, VacationDaysTotal: 20, OvertimeHoursBudget: 150})).To(Succeed())
			Expect(repo.Save(ctx, &policy.Policy{UserID: 7, VacationDaysTotal: 15, OvertimeHoursBudget: 50})).To(Succeed())

			p, err := repo.GetByUserID(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.VacationDaysTotal).To(Equal(15.0))
			Expect(p.OvertimeHoursBudget).To(Equal(50.0))

			var count int64
			Expect(db.Model(&SQLiteUserPolicy{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("reports a user without a snapshot", func() {
			_, err := repo.GetByUserID(ctx, 99)
			Expect(err).To(MatchError(policy.ErrPolicyNotFound))
		})
	})
})
