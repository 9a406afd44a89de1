package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed role defaults and bootstrap the first admin",
	Long:  `Seed the per-role default policy templates and promote the configured admin bootstrap email.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := openGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to open orm layer: %v", err)
		}

		defaults := []struct {
			Role          string
			VacationDays  float64
			OvertimeHours float64
			LeadTimeNs    int64
		}{
			{"EMPLOYEE", 20, 150, 0},
			{"MANAGER", 25, 150, 0},
			{"ADMIN", 25, 150, 0},
		}

		for _, d := range defaults {
			var exists int
			row := db.Raw("SELECT 1 FROM default_settings WHERE role = ?", d.Role).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO default_settings (role, vacation_days_total, overtime_hours_budget, notification_lead_time_ns, created_at, updated_at) VALUES (?, ?, ?, ?, now(), now())",
				d.Role, d.VacationDays, d.OvertimeHours, d.LeadTimeNs,
			).Error; err != nil {
				log.Fatalf("failed to insert defaults for %s: %v", d.Role, err)
			}
			fmt.Printf("Seeded default settings for role: %s\n", d.Role)
		}

		adminEmail := cfg.Admin.BootstrapEmail
		if adminEmail == "" {
			fmt.Println("No admin bootstrap email configured, skipping admin promotion")
			return
		}

		var adminID int64
		row := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&adminID); err != nil {
			// first login will rewrite the subject once the admin signs in
			if err := db.Exec(
				"INSERT INTO users (external_subject, email, name, role, account_status, created_at, updated_at) VALUES (?, ?, ?, 'ADMIN', 'ACCEPTED', now(), now())",
				adminEmail, adminEmail, adminEmail,
			).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&adminID); err != nil {
				log.Fatalf("failed to lookup admin user id: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		} else {
			if err := db.Exec(
				"UPDATE users SET role = 'ADMIN', account_status = 'ACCEPTED', updated_at = now() WHERE id = ?",
				adminID,
			).Error; err != nil {
				log.Fatalf("failed to promote admin user: %v", err)
			}
			fmt.Println("Promoted existing user to admin:", adminEmail)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM user_policy WHERE user_id = ?", adminID).Row().Scan(&exists); err != nil {
			if err := db.Exec(
				"INSERT INTO user_policy (user_id, vacation_days_total, overtime_hours_budget, notification_lead_time_ns, created_at, updated_at) SELECT ?, vacation_days_total, overtime_hours_budget, notification_lead_time_ns, now(), now() FROM default_settings WHERE role = 'ADMIN'",
				adminID,
			).Error; err != nil {
				log.Fatalf("failed to snapshot admin policy: %v", err)
			}
			fmt.Println("Snapshotted admin policy from role defaults")
		}
	},
}
