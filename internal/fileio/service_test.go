package fileio_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/fileio"
	"github.com/danekja/ymanager/internal/policy"
	"github.com/danekja/ymanager/internal/user"
)

func TestFileIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FileIO Suite")
}

// Mock user store for testing
type mockUserStore struct {
	users  map[int64]*user.User
	nextID int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[int64]*user.User), nextID: 1}
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserStore) Create(ctx context.Context, u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *mockUserStore) Update(ctx context.Context, u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *mockUserStore) List(ctx context.Context, status *internal.Status) ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		if status != nil && u.AccountStatus != *status {
			continue
		}
		clone := *u
		result = append(result, &clone)
	}
	return result, nil
}

// Mock policy store for testing
type mockPolicyStore struct {
	defaults map[user.Role]*policy.Defaults
	policies map[int64]*policy.Policy
}

func newMockPolicyStore() *mockPolicyStore {
	return &mockPolicyStore{
		defaults: make(map[user.Role]*policy.Defaults),
		policies: make(map[int64]*policy.Policy),
	}
}

func (m *mockPolicyStore) GetDefaultsForRole(ctx context.Context, role user.Role) (*policy.Defaults, error) {
	d, ok := m.defaults[role]
	if !ok {
		return nil, policy.ErrDefaultsNotFound
	}
	clone := *d
	return &clone, nil
}

func (m *mockPolicyStore) GetByUserID(ctx context.Context, userID int64) (*policy.Policy, error) {
	p, ok := m.policies[userID]
	if !ok {
		return nil, policy.ErrPolicyNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockPolicyStore) Save(ctx context.Context, p *policy.Policy) error {
	clone := *p
	m.policies[p.UserID] = &clone
	return nil
}

// Mock balance reader with fixed figures
type mockBalanceReader struct{}

func (m *mockBalanceReader) RemainingVacation(ctx context.Context, userID int64) (float64, error) {
	return 12.5, nil
}

func (m *mockBalanceReader) OvertimePosition(ctx context.Context, userID int64) (float64, float64, error) {
	return 4, 150, nil
}

func staffWorkbook(rows [][]interface{}) io.Reader {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Name", "Email", "Role", "Vacation Days", "Overtime Hours"}
	Expect(f.SetSheetRow(sheet, "A1", &header)).To(Succeed())
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.SetSheetRow(sheet, cell, &row)).To(Succeed())
	}

	var buf bytes.Buffer
	Expect(f.Write(&buf)).To(Succeed())
	return &buf
}

var _ = Describe("FileIO Service", func() {
	var (
		service  *fileio.Service
		users    *mockUserStore
		policies *mockPolicyStore
		admin    *user.User
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = newMockUserStore()
		policies = newMockPolicyStore()
		admin = &user.User{ID: 100, Name: "Admin", Role: user.RoleAdmin, AccountStatus: internal.StatusAccepted}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = fileio.NewService(users, policies, &mockBalanceReader{}, logger)
	})

	Describe("ImportStaff", func() {
		It("creates accepted users with policy snapshots from the sheet", func() {
			wb := staffWorkbook([][]interface{}{
				{"Jan Novak", "jan@example.com", "EMPLOYEE", 20, 150},
				{"Petra Svoboda", "petra@example.com", "MANAGER", 25, 150},
			})

			result, err := service.ImportStaff(ctx, admin, wb)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(Equal(2))
			Expect(result.Updated).To(Equal(0))

			jan, err := users.GetByEmail(ctx, "jan@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(jan.AccountStatus).To(Equal(internal.StatusAccepted))
			Expect(jan.Role).To(Equal(user.RoleEmployee))

			p, err := policies.GetByUserID(ctx, jan.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.VacationDaysTotal).To(Equal(20.0))
			Expect(p.OvertimeHoursBudget).To(Equal(150.0))
		})

		It("is idempotent by email, refreshing instead of duplicating", func() {
			wb := staffWorkbook([][]interface{}{
				{"Jan Novak", "jan@example.com", "EMPLOYEE", 20, 150},
			})
			_, err := service.ImportStaff(ctx, admin, wb)
			Expect(err).ToNot(HaveOccurred())

			again := staffWorkbook([][]interface{}{
				{"Jan B. Novak", "jan@example.com", "MANAGER", 25, 100},
			})
			result, err := service.ImportStaff(ctx, admin, again)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Created).To(Equal(0))
			Expect(result.Updated).To(Equal(1))
			Expect(users.users).To(HaveLen(1))

			jan, err := users.GetByEmail(ctx, "jan@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(jan.Name).To(Equal("Jan B. Novak"))
			Expect(jan.Role).To(Equal(user.RoleManager))
		})

		It("inherits the role template's lead time for new rows", func() {
			policies.defaults[user.RoleEmployee] = &policy.Defaults{
				Role:                 user.RoleEmployee,
				NotificationLeadTime: 7 * 24 * time.Hour,
			}
			wb := staffWorkbook([][]interface{}{
				{"Jan Novak", "jan@example.com", "EMPLOYEE", 20, 150},
			})

			_, err := service.ImportStaff(ctx, admin, wb)
			Expect(err).ToNot(HaveOccurred())

			jan, _ := users.GetByEmail(ctx, "jan@example.com")
			p, err := policies.GetByUserID(ctx, jan.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.NotificationLeadTime).To(Equal(7 * 24 * time.Hour))
		})

		It("rejects a sheet with a wrong header", func() {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			header := []interface{}{"Jmeno", "Email"}
			Expect(f.SetSheetRow(sheet, "A1", &header)).To(Succeed())
			var buf bytes.Buffer
			Expect(f.Write(&buf)).To(Succeed())

			_, err := service.ImportStaff(ctx, admin, &buf)
			Expect(err).To(MatchError(fileio.ErrMalformedSheet))
		})

		It("rejects rows with unknown roles or negative budgets", func() {
			wb := staffWorkbook([][]interface{}{
				{"Jan Novak", "jan@example.com", "WIZARD", 20, 150},
			})
			_, err := service.ImportStaff(ctx, admin, wb)
			Expect(err).To(MatchError(fileio.ErrMalformedSheet))
		})

		It("rejects a non-workbook payload", func() {
			_, err := service.ImportStaff(ctx, admin, bytes.NewBufferString("not a workbook"))
			Expect(err).To(MatchError(fileio.ErrMalformedSheet))
		})

		It("is admin only", func() {
			manager := &user.User{ID: 5, Role: user.RoleManager, AccountStatus: internal.StatusAccepted}
			wb := staffWorkbook(nil)

			_, err := service.ImportStaff(ctx, manager, wb)
			Expect(err).To(MatchError(internal.ErrUnauthorizedActor))
		})
	})

	Describe("ExportOverview", func() {
		BeforeEach(func() {
			Expect(users.Create(ctx, &user.User{
				Name: "Jan Novak", Email: "jan@example.com",
				Role: user.RoleEmployee, AccountStatus: internal.StatusAccepted,
			})).To(Succeed())
		})

		It("renders a PDF attachment for a manager", func() {
			manager := &user.User{ID: 5, Role: user.RoleManager, AccountStatus: internal.StatusAccepted}

			filename, pdfBytes, err := service.ExportOverview(ctx, manager)
			Expect(err).ToNot(HaveOccurred())
			Expect(filename).To(HaveSuffix(".pdf"))
			Expect(bytes.HasPrefix(pdfBytes, []byte("%PDF"))).To(BeTrue())
		})

		It("denies a regular employee", func() {
			employee := &user.User{ID: 6, Role: user.RoleEmployee, AccountStatus: internal.StatusAccepted}
			_, _, err := service.ExportOverview(ctx, employee)
			Expect(err).To(MatchError(internal.ErrUnauthorizedActor))
		})
	})
})
