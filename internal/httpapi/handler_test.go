package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"
	"civicdesk/internal/repository"
	"civicdesk/internal/schedule"
	"civicdesk/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuth struct {
	register     func(ctx context.Context, fullName, email, password string) (*model.User, error)
	login        func(ctx context.Context, email, password string) (*model.User, string, error)
	user         *model.User
	linkTelegram func(ctx context.Context, userID, chatID int64) error
}

func (f *fakeAuth) Register(ctx context.Context, fullName, email, password string) (*model.User, error) {
	return f.register(ctx, fullName, email, password)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuth) ParseToken(tokenString string) (*service.Claims, error) {
	if tokenString != "valid" {
		return nil, fmt.Errorf("parse token: invalid")
	}
	return &service.Claims{UserID: f.user.ID, Role: f.user.Role}, nil
}

func (f *fakeAuth) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, service.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeAuth) LinkTelegram(ctx context.Context, userID, chatID int64) error {
	return f.linkTelegram(ctx, userID, chatID)
}

type fakeOffices struct {
	OfficeAPI

	getOffice   func(ctx context.Context, id int64) (*model.Office, error)
	listOffices func(ctx context.Context) ([]*model.Office, error)
	putSchedule func(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error
}

func (f *fakeOffices) GetOffice(ctx context.Context, id int64) (*model.Office, error) {
	return f.getOffice(ctx, id)
}

func (f *fakeOffices) ListOffices(ctx context.Context) ([]*model.Office, error) {
	return f.listOffices(ctx)
}

func (f *fakeOffices) PutSchedule(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error {
	return f.putSchedule(ctx, officeID, sched)
}

type fakeRequests struct {
	RequestAPI

	create  func(ctx context.Context, userID, serviceID int64, currentAddress string, requestedDate time.Time) (*model.Request, error)
	getByID func(ctx context.Context, id int64) (*model.Request, error)
	decide  func(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error)
}

func (f *fakeRequests) Create(ctx context.Context, userID, serviceID int64, currentAddress string, requestedDate time.Time) (*model.Request, error) {
	return f.create(ctx, userID, serviceID, currentAddress, requestedDate)
}

func (f *fakeRequests) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	return f.getByID(ctx, id)
}

func (f *fakeRequests) Decide(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error) {
	return f.decide(ctx, actor, requestID, approve, note)
}

type fakeAppointments struct {
	AppointmentAPI

	availability   func(ctx context.Context, officeID int64, date time.Time) ([]string, error)
	nextWorkingDay func(ctx context.Context, officeID int64, from time.Time) (time.Time, error)
	create         func(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error)
	deleteFn       func(ctx context.Context, userID, appointmentID int64) error
	advance        func(ctx context.Context, actor *model.User, appointmentID int64, action string) (*model.Appointment, error)
}

func (f *fakeAppointments) Availability(ctx context.Context, officeID int64, date time.Time) ([]string, error) {
	return f.availability(ctx, officeID, date)
}

func (f *fakeAppointments) NextWorkingDay(ctx context.Context, officeID int64, from time.Time) (time.Time, error) {
	return f.nextWorkingDay(ctx, officeID, from)
}

func (f *fakeAppointments) Create(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error) {
	return f.create(ctx, userID, requestID, date, slot, notes)
}

func (f *fakeAppointments) Delete(ctx context.Context, userID, appointmentID int64) error {
	return f.deleteFn(ctx, userID, appointmentID)
}

func (f *fakeAppointments) Advance(ctx context.Context, actor *model.User, appointmentID int64, action string) (*model.Appointment, error) {
	return f.advance(ctx, actor, appointmentID, action)
}

func newTestHandler(auth *fakeAuth, offices *fakeOffices, requests *fakeRequests, appointments *fakeAppointments) http.Handler {
	if auth == nil {
		auth = &fakeAuth{}
	}
	if offices == nil {
		offices = &fakeOffices{}
	}
	if requests == nil {
		requests = &fakeRequests{}
	}
	if appointments == nil {
		appointments = &fakeAppointments{}
	}
	return NewHandler(auth, offices, requests, appointments, zap.NewNop()).Routes()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer valid")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func citizen() *model.User {
	return &model.User{ID: 1, FullName: "Jane Citizen", Email: "jane@example.com", Role: model.RoleCitizen}
}

func staff(officeID int64) *model.User {
	return &model.User{ID: 2, FullName: "Sam Staff", Email: "sam@example.com", Role: model.RoleStaff, OfficeID: &officeID}
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{
		register: func(ctx context.Context, fullName, email, password string) (*model.User, error) {
			return &model.User{ID: 5, FullName: fullName, Email: email, Role: model.RoleCitizen}, nil
		},
	}
	handler := newTestHandler(auth, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register",
		`{"full_name":"Jane Citizen","email":"jane@example.com","password":"hunter2hunter2"}`, false)

	require.Equal(t, http.StatusCreated, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "jane@example.com", user.Email)
	require.Equal(t, model.RoleCitizen, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := &fakeAuth{
		register: func(ctx context.Context, fullName, email, password string) (*model.User, error) {
			return nil, repository.ErrDuplicateEmail
		},
	}
	handler := newTestHandler(auth, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register",
		`{"full_name":"Jane Citizen","email":"jane@example.com","password":"hunter2hunter2"}`, false)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "email_taken", errorCode(t, rec))
}

func TestRegisterShortPassword(t *testing.T) {
	handler := newTestHandler(nil, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/register",
		`{"full_name":"Jane","email":"jane@example.com","password":"short"}`, false)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth := &fakeAuth{
		login: func(ctx context.Context, email, password string) (*model.User, string, error) {
			return nil, "", service.ErrInvalidCredentials
		},
	}
	handler := newTestHandler(auth, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"jane@example.com","password":"wrong"}`, false)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_credentials", errorCode(t, rec))
}

func TestMissingToken(t *testing.T) {
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/requests", "", false)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "missing_token", errorCode(t, rec))
}

func TestDecisionForbiddenForCitizen(t *testing.T) {
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/requests/7/decision",
		`{"approve":true}`, true)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "forbidden", errorCode(t, rec))
}

func TestDecideTrackAlreadyDecided(t *testing.T) {
	requests := &fakeRequests{
		decide: func(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error) {
			return nil, approval.ErrTrackDecided
		},
	}
	handler := newTestHandler(&fakeAuth{user: staff(3)}, nil, requests, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/requests/7/decision",
		`{"approve":true}`, true)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "track_already_decided", errorCode(t, rec))
}

func TestDecideReturnsOverallStatus(t *testing.T) {
	requests := &fakeRequests{
		decide: func(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error) {
			return &model.Request{
				ID:            7,
				UserID:        1,
				OfficeID:      3,
				StatusByStaff: model.TrackApproved,
				StatusByAdmin: model.TrackApproved,
			}, nil
		},
	}
	handler := newTestHandler(&fakeAuth{user: staff(3)}, nil, requests, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/requests/7/decision",
		`{"approve":true}`, true)

	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		OverallStatus string `json:"overall_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "approved", view.OverallStatus)
}

func TestGetRequestHiddenFromStranger(t *testing.T) {
	requests := &fakeRequests{
		getByID: func(ctx context.Context, id int64) (*model.Request, error) {
			return &model.Request{ID: id, UserID: 99, OfficeID: 42}, nil
		},
	}
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, requests, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/requests/7", "", true)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateAppointmentRequestNotApproved(t *testing.T) {
	appointments := &fakeAppointments{
		create: func(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error) {
			return nil, approval.ErrRequestNotApproved
		},
	}
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodPost, "/api/appointments",
		`{"request_id":7,"date":"2025-07-07","time":"09:00"}`, true)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "request_not_approved", errorCode(t, rec))
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	appointments := &fakeAppointments{
		create: func(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error) {
			return nil, repository.ErrSlotTaken
		},
	}
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodPost, "/api/appointments",
		`{"request_id":7,"date":"2025-07-07","time":"09:00"}`, true)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "slot_taken", errorCode(t, rec))
}

func TestDeleteCompletedAppointment(t *testing.T) {
	appointments := &fakeAppointments{
		deleteFn: func(ctx context.Context, userID, appointmentID int64) error {
			return approval.ErrAppointmentLocked
		},
	}
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodDelete, "/api/appointments/11", "", true)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "appointment_locked", errorCode(t, rec))
}

func TestAdvanceInvalidTransition(t *testing.T) {
	appointments := &fakeAppointments{
		advance: func(ctx context.Context, actor *model.User, appointmentID int64, action string) (*model.Appointment, error) {
			return nil, fmt.Errorf("complete from pending: %w", service.ErrInvalidTransition)
		},
	}
	handler := newTestHandler(&fakeAuth{user: staff(3)}, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodPost, "/api/appointments/11/advance",
		`{"action":"complete"}`, true)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "invalid_transition", errorCode(t, rec))
}

func TestAvailability(t *testing.T) {
	appointments := &fakeAppointments{
		availability: func(ctx context.Context, officeID int64, date time.Time) ([]string, error) {
			require.Equal(t, int64(3), officeID)
			return []string{"09:00", "10:00"}, nil
		},
	}
	handler := newTestHandler(nil, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodGet, "/api/offices/3/availability?date=2025-07-07", "", false)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"09:00", "10:00"}, resp.Slots)
	require.Equal(t, "2025-07-07", resp.Date)
}

func TestAvailabilityEmptyIsList(t *testing.T) {
	appointments := &fakeAppointments{
		availability: func(ctx context.Context, officeID int64, date time.Time) ([]string, error) {
			return nil, nil
		},
	}
	handler := newTestHandler(nil, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodGet, "/api/offices/3/availability?date=2025-07-07", "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"slots":[]`)
}

func TestAvailabilityBadDate(t *testing.T) {
	handler := newTestHandler(nil, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/offices/3/availability?date=07.07.2025", "", false)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_date", errorCode(t, rec))
}

func TestNextWorkingDay(t *testing.T) {
	appointments := &fakeAppointments{
		nextWorkingDay: func(ctx context.Context, officeID int64, from time.Time) (time.Time, error) {
			return from.AddDate(0, 0, 2), nil
		},
	}
	handler := newTestHandler(nil, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodGet, "/api/offices/3/next-working-day?from=2025-07-05", "", false)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp nextWorkingDayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Found)
	require.Equal(t, "2025-07-07", resp.Date)
}

func TestNextWorkingDayExhausted(t *testing.T) {
	appointments := &fakeAppointments{
		nextWorkingDay: func(ctx context.Context, officeID int64, from time.Time) (time.Time, error) {
			return time.Time{}, schedule.ErrNoWorkingDay
		},
	}
	handler := newTestHandler(nil, nil, nil, appointments)

	rec := doRequest(t, handler, http.MethodGet, "/api/offices/3/next-working-day?from=2025-07-05", "", false)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp nextWorkingDayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Found)
	require.Empty(t, resp.Date)
}

func TestPutScheduleRejectsInvalid(t *testing.T) {
	offices := &fakeOffices{
		putSchedule: func(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error {
			return fmt.Errorf("day 9: day of week out of range")
		},
	}
	handler := newTestHandler(&fakeAuth{user: &model.User{ID: 1, Role: model.RoleAdmin}}, offices, nil, nil)

	rec := doRequest(t, handler, http.MethodPut, "/api/offices/3/schedule",
		`{"9":{"available":true}}`, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_schedule", errorCode(t, rec))
}

func TestUnknownFieldRejected(t *testing.T) {
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/requests",
		`{"service_id":1,"current_address":"Main St 1","requested_date":"2025-07-07","bogus":true}`, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_json", errorCode(t, rec))
}

func TestInvalidPathID(t *testing.T) {
	handler := newTestHandler(&fakeAuth{user: citizen()}, nil, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/requests/abc", "", true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_id", errorCode(t, rec))
}
