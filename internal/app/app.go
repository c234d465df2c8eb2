// Package app wires repositories and services for the API server and the
// batch CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-leave-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-leave-engine/internal/service/leave"
	scheduleService "github.com/cmlabs-hris/hris-leave-engine/internal/service/schedule"
)

type Repositories struct {
	Transactor   database.Transactor
	Users        user.UserRepository
	OfficeTimes  schedule.OfficeTimeRepository
	Holidays     holiday.HolidayRepository
	Entries      attendance.EntryRepository
	Dailies      attendance.DailyAttendanceRepository
	LeaveTypes   leave.LeaveTypeRepository
	Balances     leave.BalanceRepository
	Applications leave.ApplicationRepository
	Configs      leave.EarnedLeaveConfigRepository
	Runs         leave.DeductionRunRepository
}

func PostgresRepositories(db *database.DB) Repositories {
	return Repositories{
		Transactor:   postgresql.NewTransactor(db),
		Users:        postgresql.NewUserRepository(db),
		OfficeTimes:  postgresql.NewOfficeTimeRepository(db),
		Holidays:     postgresql.NewHolidayRepository(db),
		Entries:      postgresql.NewEntryRepository(db),
		Dailies:      postgresql.NewDailyAttendanceRepository(db),
		LeaveTypes:   postgresql.NewLeaveTypeRepository(db),
		Balances:     postgresql.NewBalanceRepository(db),
		Applications: postgresql.NewApplicationRepository(db),
		Configs:      postgresql.NewEarnedLeaveConfigRepository(db),
		Runs:         postgresql.NewDeductionRunRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Transactor:   store,
		Users:        memory.NewUserRepository(store),
		OfficeTimes:  memory.NewOfficeTimeRepository(store),
		Holidays:     memory.NewHolidayRepository(store),
		Entries:      memory.NewEntryRepository(store),
		Dailies:      memory.NewDailyAttendanceRepository(store),
		LeaveTypes:   memory.NewLeaveTypeRepository(store),
		Balances:     memory.NewBalanceRepository(store),
		Applications: memory.NewApplicationRepository(store),
		Configs:      memory.NewEarnedLeaveConfigRepository(store),
		Runs:         memory.NewDeductionRunRepository(store),
	}
}

// Settings are the values the services need from configuration.
type Settings struct {
	Location      *time.Location
	CasualCode    string
	EarnedCode    string
	SystemActorID string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Location:      cfg.Location(),
		CasualCode:    cfg.Leave.CasualCode,
		EarnedCode:    cfg.Leave.EarnedCode,
		SystemActorID: cfg.Leave.SystemActorID,
	}
}

type Services struct {
	Attendance  attendance.AttendanceService
	Ledger      leave.Ledger
	EarnedLeave leave.EarnedLeaveService
	Deductions  leave.DeductionService
}

// NewServices builds every service. The leave-type code mapping is resolved
// here, so an unmapped code fails startup.
func NewServices(ctx context.Context, repos Repositories, settings Settings) (*Services, error) {
	types, err := leaveService.ResolveTypeMapping(ctx, repos.LeaveTypes, settings.CasualCode, settings.EarnedCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leave types: %w", err)
	}

	location := settings.Location
	if location == nil {
		location = time.UTC
	}

	resolver := scheduleService.NewWorkingDayResolver(repos.OfficeTimes, repos.Holidays)
	ledger := leaveService.NewLedger(repos.Transactor, repos.Balances, repos.LeaveTypes)

	return &Services{
		Attendance: attendanceService.NewAttendanceService(
			repos.Transactor,
			repos.Entries,
			repos.Dailies,
			repos.Users,
			resolver,
			location,
		),
		Ledger: ledger,
		EarnedLeave: leaveService.NewEarnedLeaveService(
			repos.Transactor,
			ledger,
			types,
			repos.Configs,
			repos.LeaveTypes,
			repos.Holidays,
			repos.Users,
			repos.Dailies,
		),
		Deductions: leaveService.NewDeductionService(
			repos.Transactor,
			ledger,
			types,
			repos.LeaveTypes,
			repos.Applications,
			repos.Runs,
			repos.Users,
			repos.Entries,
			repos.Dailies,
			settings.SystemActorID,
		),
	}, nil
}

// NewScheduler registers the attendance and leave jobs.
func NewScheduler(services *Services, repos Repositories, location *time.Location) *cron.Scheduler {
	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(services.Attendance, repos.Users, location).RegisterJobs(scheduler)
	cron.NewLeaveJobs(services.EarnedLeave, services.Deductions, location).RegisterJobs(scheduler)
	return scheduler
}
