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

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/user"
)

func TestUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserRepository Suite")
}

type SQLiteUser struct {
	ID              int64     `gorm:"primaryKey"`
	ExternalSubject string    `gorm:"column:external_subject;uniqueIndex;not null"`
	Email           string    `gorm:"column:email;not null"`
	Name            string    `gorm:"column:name;not null"`
	Role            string    `gorm:"column:role;default:EMPLOYEE"`
	AccountStatus   string    `gorm:"column:account_status;default:PENDING"`
	SupervisorID    *int64    `gorm:"column:supervisor_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("UserRepository", func() {
	var (
		db   *gorm.DB
		repo user.Repository
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
		Expect(db.AutoMigrate(&SQLiteUser{})).To(Succeed())

		repo = NewUserRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newUser := func(subject, email string) *user.User {
		return &user.User{
			ExternalSubject: subject,
			Email:           email,
			Name:            "Jan Novak",
			Role:            user.RoleEmployee,
			AccountStatus:   internal.StatusPending,
			CreatedAt:       time.Now(),
		}
	}

	It("creates and reads back a user by subject", func() {
		u := newUser("sub-1", "jan@example.com")
		Expect(repo.Create(ctx, u)).To(Succeed())
		Expect(u.ID).To(BeNumerically(">", 0))

		found, err := repo.GetBySubject(ctx, "sub-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(u.ID))
		Expect(found.Email).To(Equal("jan@example.com"))
		Expect(found.Role).To(Equal(user.RoleEmployee))
	})

	It("maps the unique subject violation to the duplicate sentinel", func() {
		Expect(repo.Create(ctx, newUser("sub-1", "a@example.com"))).To(Succeed())

		err := repo.Create(ctx, newUser("sub-1", "b@example.com"))
		Expect(err).To(MatchError(user.ErrDuplicateSubject))
	})

	It("finds users by email", func() {
		Expect(repo.Create(ctx, newUser("sub-1", "jan@example.com"))).To(Succeed())

		found, err := repo.GetByEmail(ctx, "jan@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ExternalSubject).To(Equal("sub-1"))

		_, err = repo.GetByEmail(ctx, "missing@example.com")
		Expect(err).To(MatchError(user.ErrUserNotFound))
	})

	It("updates role, status and supervisor", func() {
		u := newUser("sub-1", "jan@example.com")
		Expect(repo.Create(ctx, u)).To(Succeed())
		boss := newUser("sub-2", "boss@example.com")
		Expect(repo.Create(ctx, boss)).To(Succeed())

		u.Role = user.RoleManager
		u.AccountStatus = internal.StatusAccepted
		u.SupervisorID = &boss.ID
		Expect(repo.Update(ctx, u)).To(Succeed())

		found, err := repo.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.Role).To(Equal(user.RoleManager))
		Expect(found.AccountStatus).To(Equal(internal.StatusAccepted))
		Expect(*found.SupervisorID).To(Equal(boss.ID))
	})

	It("reports updates of unknown users as not found", func() {
		u := newUser("sub-1", "jan@example.com")
		u.ID = 999
		Expect(repo.Update(ctx, u)).To(MatchError(user.ErrUserNotFound))
	})

	It("lists users filtered by account status", func() {
		a := newUser("sub-1", "a@example.com")
		Expect(repo.Create(ctx, a)).To(Succeed())
		b := newUser("sub-2", "b@example.com")
		Expect(repo.Create(ctx, b)).To(Succeed())

		b.AccountStatus = internal.StatusAccepted
		Expect(repo.Update(ctx, b)).To(Succeed())

		accepted := internal.StatusAccepted
		result, err := repo.List(ctx, &accepted)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(HaveLen(1))
		Expect(result[0].ID).To(Equal(b.ID))

		all, err := repo.List(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
	})
})
