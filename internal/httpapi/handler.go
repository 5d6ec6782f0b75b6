// Package httpapi exposes the service over HTTP. Handlers own all request
// decoding and response rendering; every business decision is delegated to
// the service layer, which re-checks its guards against fresh state.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"
	"civicdesk/internal/schedule"
	"civicdesk/internal/service"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type AuthAPI interface {
	Register(ctx context.Context, fullName, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(tokenString string) (*service.Claims, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, userID, chatID int64) error
}

type OfficeAPI interface {
	CreateOffice(ctx context.Context, name, address, phone string) (*model.Office, error)
	GetOffice(ctx context.Context, id int64) (*model.Office, error)
	ListOffices(ctx context.Context) ([]*model.Office, error)
	UpdateOffice(ctx context.Context, office *model.Office) error
	DeleteOffice(ctx context.Context, id int64) error
	CreateService(ctx context.Context, officeID int64, name, description string) (*model.Service, error)
	GetService(ctx context.Context, id int64) (*model.Service, error)
	ListServices(ctx context.Context, officeID int64, activeOnly bool) ([]*model.Service, error)
	UpdateService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, id int64) error
	GetSchedule(ctx context.Context, officeID int64) (schedule.WeeklySchedule, error)
	PutSchedule(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error
}

type RequestAPI interface {
	Create(ctx context.Context, userID, serviceID int64, currentAddress string, requestedDate time.Time) (*model.Request, error)
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Request, error)
	ListByOffice(ctx context.Context, officeID int64) ([]*model.Request, error)
	Update(ctx context.Context, userID, requestID int64, currentAddress string, requestedDate time.Time) (*model.Request, error)
	Delete(ctx context.Context, userID, requestID int64) error
	Decide(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error)
}

type AppointmentAPI interface {
	Availability(ctx context.Context, officeID int64, date time.Time) ([]string, error)
	NextWorkingDay(ctx context.Context, officeID int64, from time.Time) (time.Time, error)
	Create(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error)
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Appointment, error)
	ListByOffice(ctx context.Context, officeID int64) ([]*model.Appointment, error)
	Reschedule(ctx context.Context, userID, appointmentID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error)
	Cancel(ctx context.Context, userID, appointmentID int64) error
	Delete(ctx context.Context, userID, appointmentID int64) error
	Advance(ctx context.Context, actor *model.User, appointmentID int64, action string) (*model.Appointment, error)
}

type Handler struct {
	auth         AuthAPI
	offices      OfficeAPI
	requests     RequestAPI
	appointments AppointmentAPI
	logger       *zap.Logger
}

func NewHandler(auth AuthAPI, offices OfficeAPI, requests RequestAPI, appointments AppointmentAPI, logger *zap.Logger) *Handler {
	return &Handler{
		auth:         auth,
		offices:      offices,
		requests:     requests,
		appointments: appointments,
		logger:       logger,
	}
}

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.GET("/healthz", h.handleHealth)

	router.POST("/api/auth/register", h.handleRegister)
	router.POST("/api/auth/login", h.handleLogin)
	router.POST("/api/auth/telegram", h.requireAuth(h.handleLinkTelegram))

	router.GET("/api/offices", h.handleListOffices)
	router.POST("/api/offices", h.requireRole(h.handleCreateOffice, model.RoleAdmin))
	router.GET("/api/offices/:id", h.handleGetOffice)
	router.PUT("/api/offices/:id", h.requireRole(h.handleUpdateOffice, model.RoleAdmin))
	router.DELETE("/api/offices/:id", h.requireRole(h.handleDeleteOffice, model.RoleAdmin))

	router.GET("/api/offices/:id/services", h.handleListServices)
	router.POST("/api/offices/:id/services", h.requireRole(h.handleCreateService, model.RoleAdmin))
	router.GET("/api/services/:id", h.handleGetService)
	router.PUT("/api/services/:id", h.requireRole(h.handleUpdateService, model.RoleAdmin))
	router.DELETE("/api/services/:id", h.requireRole(h.handleDeleteService, model.RoleAdmin))

	router.GET("/api/offices/:id/schedule", h.handleGetSchedule)
	router.PUT("/api/offices/:id/schedule", h.requireRole(h.handlePutSchedule, model.RoleAdmin))
	router.GET("/api/offices/:id/availability", h.handleAvailability)
	router.GET("/api/offices/:id/next-working-day", h.handleNextWorkingDay)

	router.POST("/api/requests", h.requireRole(h.handleCreateRequest, model.RoleCitizen))
	router.GET("/api/requests", h.requireAuth(h.handleListRequests))
	router.GET("/api/requests/:id", h.requireAuth(h.handleGetRequest))
	router.PUT("/api/requests/:id", h.requireRole(h.handleUpdateRequest, model.RoleCitizen))
	router.DELETE("/api/requests/:id", h.requireRole(h.handleDeleteRequest, model.RoleCitizen))
	router.POST("/api/requests/:id/decision", h.requireRole(h.handleDecideRequest, model.RoleStaff, model.RoleAdmin))

	router.POST("/api/appointments", h.requireRole(h.handleCreateAppointment, model.RoleCitizen))
	router.GET("/api/appointments", h.requireAuth(h.handleListAppointments))
	router.GET("/api/appointments/:id", h.requireAuth(h.handleGetAppointment))
	router.PUT("/api/appointments/:id", h.requireRole(h.handleRescheduleAppointment, model.RoleCitizen))
	router.DELETE("/api/appointments/:id", h.requireRole(h.handleDeleteAppointment, model.RoleCitizen))
	router.POST("/api/appointments/:id/cancel", h.requireRole(h.handleCancelAppointment, model.RoleCitizen))
	router.POST("/api/appointments/:id/advance", h.requireRole(h.handleAdvanceAppointment, model.RoleStaff, model.RoleAdmin))

	return router
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

// requestView augments a request with its derived overall status; the
// stored record never carries it.
type requestView struct {
	*model.Request
	OverallStatus approval.OverallStatus `json:"overall_status"`
}

func (h *Handler) viewRequest(w http.ResponseWriter, req *model.Request) (requestView, bool) {
	overall, err := approval.ResolveRequest(req)
	if err != nil {
		h.logger.Error("Request has invalid track status", zap.Int64("request_id", req.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return requestView{}, false
	}
	return requestView{Request: req, OverallStatus: overall}, true
}

func (h *Handler) viewRequests(w http.ResponseWriter, requests []*model.Request) ([]requestView, bool) {
	views := make([]requestView, 0, len(requests))
	for _, req := range requests {
		view, ok := h.viewRequest(w, req)
		if !ok {
			return nil, false
		}
		views = append(views, view)
	}
	return views, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, ps httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryDate(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_date", key+" query parameter is required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", key+" must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// --- auth ---

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.FullName == "" || req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "invalid_request", "full_name, email and a password of at least 8 characters are required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

type linkTelegramRequest struct {
	ChatID int64 `json:"chat_id"`
}

func (h *Handler) handleLinkTelegram(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req linkTelegramRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ChatID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "chat_id is required")
		return
	}

	user := UserFromContext(r.Context())
	if err := h.auth.LinkTelegram(r.Context(), user.ID, req.ChatID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- offices ---

type officeRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *Handler) handleCreateOffice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req officeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	office, err := h.offices.CreateOffice(r.Context(), req.Name, req.Address, req.Phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, office)
}

func (h *Handler) handleListOffices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	offices, err := h.offices.ListOffices(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offices)
}

func (h *Handler) handleGetOffice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	office, err := h.offices.GetOffice(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, office)
}

func (h *Handler) handleUpdateOffice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req officeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	office := &model.Office{ID: id, Name: req.Name, Address: req.Address, Phone: req.Phone}
	if err := h.offices.UpdateOffice(r.Context(), office); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, office)
}

func (h *Handler) handleDeleteOffice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	if err := h.offices.DeleteOffice(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- services ---

type serviceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (h *Handler) handleCreateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req serviceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	svc, err := h.offices.CreateService(r.Context(), officeID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("all") == ""
	services, err := h.offices.ListServices(r.Context(), officeID, activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *Handler) handleGetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	svc, err := h.offices.GetService(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *Handler) handleUpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req serviceRequest
	if !decode(w, r, &req) {
		return
	}

	svc, err := h.offices.GetService(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Description != "" {
		svc.Description = req.Description
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.offices.UpdateService(r.Context(), svc); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *Handler) handleDeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	if err := h.offices.DeleteService(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- schedule & availability ---

func (h *Handler) handleGetSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}

	sched, err := h.offices.GetSchedule(r.Context(), officeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sched == nil {
		sched = schedule.WeeklySchedule{}
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *Handler) handlePutSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}

	var sched schedule.WeeklySchedule
	if !decode(w, r, &sched) {
		return
	}

	if err := h.offices.PutSchedule(r.Context(), officeID, sched); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

type availabilityResponse struct {
	OfficeID int64    `json:"office_id"`
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	slots, err := h.appointments.Availability(r.Context(), officeID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, availabilityResponse{
		OfficeID: officeID,
		Date:     date.Format(dateLayout),
		Slots:    slots,
	})
}

type nextWorkingDayResponse struct {
	OfficeID int64  `json:"office_id"`
	Found    bool   `json:"found"`
	Date     string `json:"date,omitempty"`
}

func (h *Handler) handleNextWorkingDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	officeID, ok := pathID(w, ps)
	if !ok {
		return
	}
	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}

	next, err := h.appointments.NextWorkingDay(r.Context(), officeID, from)
	if err != nil {
		if errors.Is(err, schedule.ErrNoWorkingDay) {
			// Exhausted lookahead is a valid outcome, not an error.
			writeJSON(w, http.StatusOK, nextWorkingDayResponse{OfficeID: officeID, Found: false})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nextWorkingDayResponse{
		OfficeID: officeID,
		Found:    true,
		Date:     next.Format(dateLayout),
	})
}

// --- requests ---

type createRequestRequest struct {
	ServiceID      int64  `json:"service_id"`
	CurrentAddress string `json:"current_address"`
	RequestedDate  string `json:"requested_date"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequestRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ServiceID <= 0 || req.CurrentAddress == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "service_id and current_address are required")
		return
	}
	date, err := time.Parse(dateLayout, req.RequestedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "requested_date must be formatted YYYY-MM-DD")
		return
	}

	user := UserFromContext(r.Context())
	created, err := h.requests.Create(r.Context(), user.ID, req.ServiceID, req.CurrentAddress, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, ok := h.viewRequest(w, created)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := UserFromContext(r.Context())

	var (
		requests []*model.Request
		err      error
	)
	if user.IsOfficeRole() && user.OfficeID != nil {
		requests, err = h.requests.ListByOffice(r.Context(), *user.OfficeID)
	} else {
		requests, err = h.requests.ListByUser(r.Context(), user.ID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views, ok := h.viewRequests(w, requests)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	req, err := h.requests.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user := UserFromContext(r.Context())
	if !canSeeRequest(user, req) {
		writeError(w, http.StatusForbidden, "forbidden", "no permission for this operation")
		return
	}

	view, ok := h.viewRequest(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// canSeeRequest: owners see their own requests, office roles see their
// office's.
func canSeeRequest(user *model.User, req *model.Request) bool {
	if req.UserID == user.ID {
		return true
	}
	return user.IsOfficeRole() && user.OfficeID != nil && *user.OfficeID == req.OfficeID
}

type updateRequestRequest struct {
	CurrentAddress string `json:"current_address"`
	RequestedDate  string `json:"requested_date"`
}

func (h *Handler) handleUpdateRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req updateRequestRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CurrentAddress == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "current_address is required")
		return
	}
	date, err := time.Parse(dateLayout, req.RequestedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "requested_date must be formatted YYYY-MM-DD")
		return
	}

	user := UserFromContext(r.Context())
	updated, err := h.requests.Update(r.Context(), user.ID, id, req.CurrentAddress, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, ok := h.viewRequest(w, updated)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	user := UserFromContext(r.Context())
	if err := h.requests.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type decisionRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty"`
}

func (h *Handler) handleDecideRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req decisionRequest
	if !decode(w, r, &req) {
		return
	}

	user := UserFromContext(r.Context())
	decided, err := h.requests.Decide(r.Context(), user, id, req.Approve, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, ok := h.viewRequest(w, decided)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// --- appointments ---

type createAppointmentRequest struct {
	RequestID int64   `json:"request_id"`
	Date      string  `json:"date"`
	Time      *string `json:"time,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (h *Handler) handleCreateAppointment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createAppointmentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RequestID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "request_id is required")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
		return
	}

	user := UserFromContext(r.Context())
	appt, err := h.appointments.Create(r.Context(), user.ID, req.RequestID, date, req.Time, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *Handler) handleListAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := UserFromContext(r.Context())

	var (
		appointments []*model.Appointment
		err          error
	)
	if user.IsOfficeRole() && user.OfficeID != nil {
		appointments, err = h.appointments.ListByOffice(r.Context(), *user.OfficeID)
	} else {
		appointments, err = h.appointments.ListByUser(r.Context(), user.ID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *Handler) handleGetAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user := UserFromContext(r.Context())
	if appt.UserID != user.ID && !(user.IsOfficeRole() && user.OfficeID != nil && *user.OfficeID == appt.OfficeID) {
		writeError(w, http.StatusForbidden, "forbidden", "no permission for this operation")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type rescheduleRequest struct {
	Date  string  `json:"date"`
	Time  *string `json:"time,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (h *Handler) handleRescheduleAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req rescheduleRequest
	if !decode(w, r, &req) {
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
		return
	}

	user := UserFromContext(r.Context())
	appt, err := h.appointments.Reschedule(r.Context(), user.ID, id, date, req.Time, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *Handler) handleCancelAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	user := UserFromContext(r.Context())
	if err := h.appointments.Cancel(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	user := UserFromContext(r.Context())
	if err := h.appointments.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type advanceRequest struct {
	Action string `json:"action"`
}

func (h *Handler) handleAdvanceAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}

	var req advanceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "action is required")
		return
	}

	user := UserFromContext(r.Context())
	appt, err := h.appointments.Advance(r.Context(), user, id, req.Action)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}
