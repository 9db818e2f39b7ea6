package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/core/service"
)

// StatusTooEarly is returned while the owner is still active.
const StatusTooEarly = 425

type HTTPHandler struct {
	ledgerService *service.LedgerService
	log           *zap.Logger
}

type DeployHTTPRequest struct {
	Owner string `json:"owner"`
	Heir  string `json:"heir"`
}

type DepositHTTPRequest struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

type WithdrawHTTPRequest struct {
	RequestID string `json:"request_id"`
	Caller    string `json:"caller"`
	Amount    string `json:"amount"`
}

type InheritHTTPRequest struct {
	RequestID string `json:"request_id"`
	Caller    string `json:"caller"`
	NewHeir   string `json:"new_heir"`
}

type ErrorHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(ledgerService *service.LedgerService, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{ledgerService: ledgerService, log: log}
}

// Router registers the API routes on a new gorilla router.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api/ledgers").Subrouter()
	api.HandleFunc("", h.Deploy).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.GetLedger).Methods(http.MethodGet)
	api.HandleFunc("/{id}/events", h.Events).Methods(http.MethodGet)
	api.HandleFunc("/{id}/deposit", h.Deposit).Methods(http.MethodPost)
	api.HandleFunc("/{id}/withdraw", h.Withdraw).Methods(http.MethodPost)
	api.HandleFunc("/{id}/inherit", h.Inherit).Methods(http.MethodPost)
	return r
}

func (h *HTTPHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	var req DeployHTTPRequest
	if !decode(w, r, &req) {
		return
	}
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	heir, err := parseAddress("heir", req.Heir)
	if err != nil {
		h.writeError(w, err)
		return
	}

	l, err := h.ledgerService.Deploy(r.Context(), owner, heir)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLedgerView(l, h.ledgerService.Now()))
}

func (h *HTTPHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledgerService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLedgerView(l, h.ledgerService.Now()))
}

func (h *HTTPHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.ledgerService.Events(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, newEventView(ev))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositHTTPRequest
	if !decode(w, r, &req) {
		return
	}
	from, err := parseAddress("from", req.From)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	l, err := h.ledgerService.Deposit(r.Context(), mux.Vars(r)["id"], from, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLedgerView(l, h.ledgerService.Now()))
}

func (h *HTTPHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawHTTPRequest
	if !decode(w, r, &req) {
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	l, err := h.ledgerService.Withdraw(r.Context(), req.RequestID, mux.Vars(r)["id"], caller, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLedgerView(l, h.ledgerService.Now()))
}

func (h *HTTPHandler) Inherit(w http.ResponseWriter, r *http.Request) {
	var req InheritHTTPRequest
	if !decode(w, r, &req) {
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	newHeir, err := parseAddress("new_heir", req.NewHeir)
	if err != nil {
		h.writeError(w, err)
		return
	}

	l, err := h.ledgerService.Inherit(r.Context(), req.RequestID, mux.Vars(r)["id"], caller, newHeir)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLedgerView(l, h.ledgerService.Now()))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		message = "internal error"
	}
	writeJSON(w, status, ErrorHTTPResponse{
		Success: false,
		Message: message,
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotHeir):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOwnerStillActive):
		return StatusTooEarly
	case errors.Is(err, service.ErrLedgerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidHeir), errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrBalanceOverflow),
		errors.Is(err, errInvalidAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
