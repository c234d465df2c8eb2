package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	RunEarnedLeave(w http.ResponseWriter, r *http.Request)
	RunDeductions(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	earnedLeaveService leave.EarnedLeaveService
	deductionService   leave.DeductionService
	ledger             leave.Ledger
}

func NewLeaveHandler(earnedLeaveService leave.EarnedLeaveService, deductionService leave.DeductionService, ledger leave.Ledger) LeaveHandler {
	return &LeaveHandlerImpl{
		earnedLeaveService: earnedLeaveService,
		deductionService:   deductionService,
		ledger:             ledger,
	}
}

// RunEarnedLeave implements LeaveHandler.
func (l *LeaveHandlerImpl) RunEarnedLeave(w http.ResponseWriter, r *http.Request) {
	var req leave.EarnedLeaveRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode earned leave request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.earnedLeaveService.RunEarnedLeaveCalculation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, runMessage("Earned leave calculation", req.DryRun), result)
}

// RunDeductions implements LeaveHandler.
func (l *LeaveHandlerImpl) RunDeductions(w http.ResponseWriter, r *http.Request) {
	var req leave.DeductionRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode deduction request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.deductionService.RunMonthlyDeductions(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, runMessage("Monthly deductions", req.DryRun), result)
}

// GetBalances implements LeaveHandler. Users may read their own balances;
// admins may read anyone's.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, jwt.ErrInvalidToken)
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "me" {
		userID = p.UserID
	}
	if !validator.IsValidUUID(userID) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "user_id",
			Message: "user_id must be a UUID or \"me\"",
		}})
		return
	}
	if userID != p.UserID && !p.IsAdmin {
		response.HandleError(w, user.ErrAdminPrivilegeRequired)
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || !validator.IsValidYear(year) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "year",
			Message: "year must be a four-digit year",
		}})
		return
	}

	balances, err := l.ledger.List(r.Context(), userID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

func runMessage(name string, dryRun bool) string {
	if dryRun {
		return name + " previewed (dry run)"
	}
	return name + " completed"
}
