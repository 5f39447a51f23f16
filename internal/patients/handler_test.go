package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

type fakePatientRepo struct {
	byID     map[string]*Patient
	byDoctor map[string][]*Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{
		byID:     map[string]*Patient{},
		byDoctor: map[string][]*Patient{},
	}
}

func (f *fakePatientRepo) Create(_ context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &Patient{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Guest:     req.Guest,
		CreatedAt: time.Now(),
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) GetByUserID(_ context.Context, userID string) (*Patient, error) {
	for _, p := range f.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (f *fakePatientRepo) ListByDoctor(_ context.Context, doctorID string) ([]*Patient, error) {
	return f.byDoctor[doctorID], nil
}

func withDoctorSession(r *http.Request, doctorID string) *http.Request {
	ctx := session.WithSession(r.Context(), session.Session{
		UserID:   "user-" + doctorID,
		DoctorID: doctorID,
		Role:     "doctor",
	})
	return r.WithContext(ctx)
}

func TestListMineRequiresSession(t *testing.T) {
	h := NewHandler(newFakePatientRepo(), logging.New("error"))

	rec := httptest.NewRecorder()
	h.ListMine(rec, httptest.NewRequest(http.MethodGet, "/me/patients", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMineReturnsDoctorPatients(t *testing.T) {
	repo := newFakePatientRepo()
	repo.byDoctor["doc-1"] = []*Patient{
		{ID: "pat-1", Name: "Ama Boateng"},
		{ID: "pat-2", Name: "Kofi Mensah"},
	}
	h := NewHandler(repo, logging.New("error"))

	req := withDoctorSession(httptest.NewRequest(http.MethodGet, "/me/patients", nil), "doc-1")
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Patients []*Patient `json:"patients"`
		Count    int        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestGetPatientNotFound(t *testing.T) {
	h := NewHandler(newFakePatientRepo(), logging.New("error"))

	router := chi.NewRouter()
	router.Get("/patients/{patientID}", h.Get)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePatientLinksSessionUser(t *testing.T) {
	repo := newFakePatientRepo()
	h := NewHandler(repo, logging.New("error"))

	body := strings.NewReader(`{"name":"Ama Boateng","email":"ama@example.com"}`)
	req := withDoctorSession(httptest.NewRequest(http.MethodPost, "/patients", body), "doc-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "user-doc-1", created.UserID)
}

func TestCreatePatientValidation(t *testing.T) {
	h := NewHandler(newFakePatientRepo(), logging.New("error"))

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{"name":"Ama Boateng"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
