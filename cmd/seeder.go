package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/auth"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	departmentPostgres "github.com/frahmantamala/leaveflow/internal/department/postgres"
	"github.com/frahmantamala/leaveflow/internal/employee"
	employeePostgres "github.com/frahmantamala/leaveflow/internal/employee/postgres"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var (
	seedHREmail    string
	seedHRPassword string
)

var seedDepartments = []string{"Engineering", "Sales", "Marketing", "Human Resources"}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with departments and a bootstrap HR account",
	Long:  `Seed the database with the default departments and one HR account so the first login can administer the rest.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		db, err := initDB(cfg.Database, cfg.Logging.Level)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		departments := departmentPostgres.NewDepartmentRepository(db.Gorm)

		var hrDepartmentID *int64
		for _, name := range seedDepartments {
			d, err := departments.GetByName(ctx, name)
			if err != nil {
				log.Fatalf("failed to look up department %s: %v", name, err)
			}
			if d == nil {
				d = &departmentDatamodel.Department{Name: name}
				if err := departments.Create(ctx, d); err != nil {
					log.Fatalf("failed to insert department %s: %v", name, err)
				}
				fmt.Println("Seeded department:", name)
			}
			if name == "Human Resources" {
				id := d.ID
				hrDepartmentID = &id
			}
		}

		employees := employee.NewService(
			employeePostgres.NewEmployeeRepository(db.Gorm),
			departments,
			auth.NewBcryptHasher(cfg.Security.BCryptCost),
			nil,
			internal.SystemClock,
			lg,
		)

		if _, err := employees.FindByEmail(ctx, seedHREmail); err == nil {
			fmt.Println("HR account already exists:", seedHREmail)
			return
		}

		hr, err := employees.Register(ctx, employee.NewEmployee{
			Name:         "HR Admin",
			Email:        seedHREmail,
			Password:     seedHRPassword,
			Role:         identity.RoleHR,
			DepartmentID: hrDepartmentID,
			HireDate:     time.Now(),
		})
		if err != nil {
			log.Fatalf("failed to seed HR account: %v", err)
		}
		fmt.Println("Seeded HR account:", hr.Email)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedHREmail, "hr-email", "hr@leaveflow.local", "email of the bootstrap HR account")
	seedCmd.Flags().StringVar(&seedHRPassword, "hr-password", "password", "password of the bootstrap HR account")
}
