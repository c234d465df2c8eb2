package app

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.PutLeaveType(leave.LeaveType{Code: "casual", Name: "Casual Leave", IsActive: true})
	store.PutLeaveType(leave.LeaveType{Code: "earned", Name: "Earned Leave", IsActive: true})
	return store
}

func TestNewServices(t *testing.T) {
	repos := MemoryRepositories(seededStore())

	services, err := NewServices(context.Background(), repos, Settings{
		Location:   time.UTC,
		CasualCode: "casual",
		EarnedCode: "earned",
	})
	require.NoError(t, err)
	assert.NotNil(t, services.Attendance)
	assert.NotNil(t, services.Ledger)
	assert.NotNil(t, services.EarnedLeave)
	assert.NotNil(t, services.Deductions)
}

func TestNewServices_UnmappedCodeFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		casual string
		earned string
	}{
		{"unknown casual code", "sick", "earned"},
		{"unknown earned code", "casual", "annual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := MemoryRepositories(seededStore())

			_, err := NewServices(context.Background(), repos, Settings{
				CasualCode: tt.casual,
				EarnedCode: tt.earned,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, leave.ErrLeaveTypeNotMapped)
		})
	}
}

func TestNewScheduler_RegistersJobs(t *testing.T) {
	repos := MemoryRepositories(seededStore())
	services, err := NewServices(context.Background(), repos, Settings{CasualCode: "casual", EarnedCode: "earned"})
	require.NoError(t, err)

	scheduler := NewScheduler(services, repos, time.UTC)

	assert.Equal(t, []string{
		"mark_absent_users",
		"monthly_leave_deductions",
		"yearly_earned_leave",
	}, scheduler.Jobs())
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Timezone: "Asia/Jakarta"},
		Leave: config.LeaveConfig{
			CasualCode:    "CL",
			EarnedCode:    "EL",
			SystemActorID: "0190b1a8-7c1e-7a3b-9f00-000000000001",
		},
	}

	settings := SettingsFromConfig(cfg)

	assert.Equal(t, "CL", settings.CasualCode)
	assert.Equal(t, "EL", settings.EarnedCode)
	assert.Equal(t, cfg.Leave.SystemActorID, settings.SystemActorID)
	require.NotNil(t, settings.Location)
	assert.Equal(t, "Asia/Jakarta", settings.Location.String())
}
