package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/app"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/memory"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var wib = time.FixedZone("WIB", 7*60*60)

type apiFixture struct {
	store  *memory.Store
	router *chi.Mux
	jwt    jwt.Service
	types  leave.TypeMapping
	user   user.User
	admin  user.User
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	office := store.PutOfficeTime(schedule.OfficeTime{
		Name:              "Regular",
		StartTime:         time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:           time.Date(0, 1, 1, 17, 0, 0, 0, time.UTC),
		LateGraceMinutes:  10,
		EarlyGraceMinutes: 10,
		WorkingDays:       []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	})
	casual := store.PutLeaveType(leave.LeaveType{Code: "casual", Name: "Casual Leave", IsActive: true})
	earned := store.PutLeaveType(leave.LeaveType{Code: "earned", Name: "Earned Leave", IsActive: true})
	u := store.PutUser(user.User{FullName: "Dewi Lestari", Email: "dewi@example.com", IsActive: true, OfficeTimeID: &office.ID})
	admin := store.PutUser(user.User{FullName: "Admin", Email: "admin@example.com", IsActive: true, IsAdmin: true})

	repos := app.MemoryRepositories(store)
	services, err := app.NewServices(context.Background(), repos, app.Settings{
		Location:      wib,
		CasualCode:    "casual",
		EarnedCode:    "earned",
		SystemActorID: admin.ID,
	})
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(
		jwtService,
		NewAttendanceHandler(services.Attendance, wib),
		NewLeaveHandler(services.EarnedLeave, services.Deductions, services.Ledger),
		RouterOptions{Env: "test", Version: "test"},
	)

	return &apiFixture{
		store:  store,
		router: router,
		jwt:    jwtService,
		types:  leave.TypeMapping{Casual: casual, Earned: earned},
		user:   u,
		admin:  admin,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, as *user.User, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, _, err := f.jwt.GenerateAccessToken(as.ID, as.IsAdmin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestAttendanceAPI_ClockInAndOut(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", &f.user, map[string]interface{}{
		"timestamp": "2024-03-04T09:15:00+07:00",
		"latitude":  -6.2,
		"longitude": 106.8,
	})
	require.Equal(t, http.StatusCreated, code)
	var in attendance.ClockInResponse
	require.NoError(t, json.Unmarshal(env.Data, &in))
	assert.Equal(t, 5, in.LateMinutes)
	assert.Equal(t, "2024-03-04", in.Daily.Date)
	assert.Equal(t, attendance.StatusLateIn, in.Daily.Status)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", &f.user, map[string]interface{}{
		"timestamp": "2024-03-04T09:20:00+07:00",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/clock-out", &f.user, map[string]interface{}{
		"timestamp": "2024-03-04T16:30:00+07:00",
	})
	require.Equal(t, http.StatusOK, code)
	var out attendance.ClockOutResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 20, out.EarlyMinutes)
	assert.True(t, decimal.RequireFromString("7.25").Equal(out.WorkingHours))
	assert.Equal(t, attendance.StatusLateInEarlyOut, out.Daily.Status)

	code, env = f.do(t, http.MethodGet, "/api/v1/attendance/today?date=2024-03-04", &f.user, nil)
	require.Equal(t, http.StatusOK, code)
	var daily attendance.DailyAttendanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &daily))
	assert.Equal(t, 1, daily.TotalEntries)
	require.NotNil(t, daily.ScheduleName)
	assert.Equal(t, "Regular", *daily.ScheduleName)

	code, env = f.do(t, http.MethodGet, "/api/v1/attendance/history?date_from=2024-03-01&date_to=2024-03-31", &f.user, nil)
	require.Equal(t, http.StatusOK, code)
	var history []attendance.DailyAttendanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)
}

func TestAttendanceAPI_Errors(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/v1/attendance/clock-out", &f.user, map[string]interface{}{
		"timestamp": "2024-03-04T17:00:00+07:00",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Not clocked in", env.Error.Message)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", &f.user, map[string]interface{}{
		"timestamp": "2024-03-09T09:00:00+07:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "NOT_WORKING_DAY", env.Error.Code)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", &f.user, map[string]interface{}{
		"timestamp": "2024-03-04T09:00:00+07:00",
		"latitude":  -6.2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "location")

	code, _ = f.do(t, http.MethodGet, "/api/v1/attendance/today?date=2024-03-05", &f.user, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = f.do(t, http.MethodGet, "/api/v1/attendance/today?date=05-03-2024", &f.user, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "date")
}

func TestAPI_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/v1/attendance/today", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLeaveAPI_AdminOnlyRuns(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/v1/leave/deductions/run", &f.user, leave.DeductionRunRequest{Month: 3, Year: 2024})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = f.do(t, http.MethodPost, "/api/v1/leave/deductions/run", &f.admin, leave.DeductionRunRequest{Month: 3, Year: 2024, DryRun: true})
	require.Equal(t, http.StatusOK, code)
	var resp leave.DeductionRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Summary.DryRun)
	assert.Equal(t, 2, resp.Summary.Processed)

	code, env = f.do(t, http.MethodPost, "/api/v1/leave/deductions/run", &f.admin, leave.DeductionRunRequest{Month: 0, Year: 2024})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "month")
}

func TestLeaveAPI_EarnedLeaveWithoutConfig(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/v1/leave/earned-leave/run", &f.admin, leave.EarnedLeaveRunRequest{Year: 2024, PostingYear: 2025})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Error.Message, "earned leave config")
}

func TestLeaveAPI_EarnedLeaveRun(t *testing.T) {
	f := newAPIFixture(t)
	f.store.PutEarnedLeaveConfig(leave.EarnedLeaveConfig{
		WorkingDaysPerEarnedLeave: 20,
		MaxEarnedLeaveDays:        30,
		IsActive:                  true,
	})

	code, env := f.do(t, http.MethodPost, "/api/v1/leave/earned-leave/run", &f.admin, leave.EarnedLeaveRunRequest{
		Year:        2024,
		PostingYear: 2025,
		UserIDs:     []string{f.user.ID},
	})
	require.Equal(t, http.StatusOK, code)
	var resp leave.EarnedLeaveRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, f.user.ID, resp.Results[0].UserID)
	assert.Equal(t, "Earned leave calculation completed", env.Message)
}

func TestLeaveAPI_Balances(t *testing.T) {
	f := newAPIFixture(t)
	f.store.PutBalance(leave.Balance{
		UserID:      f.user.ID,
		LeaveTypeID: f.types.Casual.ID,
		Year:        2024,
		Balance:     decimal.NewFromInt(12),
	})

	code, env := f.do(t, http.MethodGet, "/api/v1/leave/balances/me/2024", &f.user, nil)
	require.Equal(t, http.StatusOK, code)
	var balances []leave.BalanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &balances))
	require.Len(t, balances, 1)
	assert.Equal(t, "casual", balances[0].LeaveTypeCode)
	assert.True(t, decimal.NewFromInt(12).Equal(balances[0].Balance))

	code, _ = f.do(t, http.MethodGet, "/api/v1/leave/balances/"+f.admin.ID+"/2024", &f.user, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/leave/balances/"+f.user.ID+"/2024", &f.admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/leave/balances/me/24", &f.user, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = f.do(t, http.MethodGet, "/api/v1/leave/balances/not-a-uuid/2024", &f.admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "user_id")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
