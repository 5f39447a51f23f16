package sharing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

type fakeShareRepo struct {
	shares map[string]*SharedRecord
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: map[string]*SharedRecord{}}
}

func (f *fakeShareRepo) Share(_ context.Context, fromDoctorID string, req *ShareRequest) (*SharedRecord, error) {
	rec := &SharedRecord{
		ID:           "sh-1",
		FromDoctorID: fromDoctorID,
		ToDoctorID:   req.ToDoctorID,
		PatientID:    req.PatientID,
		Notes:        req.Notes,
		Active:       true,
		SharedAt:     time.Now().UTC(),
	}
	f.shares[rec.ID] = rec
	return rec, nil
}

func (f *fakeShareRepo) ListReceived(_ context.Context, doctorID string) ([]*SharedRecord, error) {
	out := []*SharedRecord{}
	for _, rec := range f.shares {
		if rec.ToDoctorID == doctorID && rec.Active {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeShareRepo) ListSent(_ context.Context, doctorID string) ([]*SharedRecord, error) {
	out := []*SharedRecord{}
	for _, rec := range f.shares {
		if rec.FromDoctorID == doctorID && rec.Active {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeShareRepo) Revoke(_ context.Context, id, fromDoctorID string) error {
	rec, ok := f.shares[id]
	if !ok || rec.FromDoctorID != fromDoctorID || !rec.Active {
		return ErrShareNotFound
	}
	rec.Active = false
	return nil
}

type captureSink struct {
	envelopes []events.Envelope
	doctorIDs []string
}

func (c *captureSink) Publish(_ context.Context, doctorID string, env events.Envelope) error {
	c.doctorIDs = append(c.doctorIDs, doctorID)
	c.envelopes = append(c.envelopes, env)
	return nil
}

func asDoctor(r *http.Request, doctorID string) *http.Request {
	return r.WithContext(session.WithSession(r.Context(), session.Session{
		UserID: "user-1", DoctorID: doctorID, Role: "doctor",
	}))
}

func TestShareCreatesAndNotifies(t *testing.T) {
	repo := newFakeShareRepo()
	sink := &captureSink{}
	h := NewHandler(repo, logging.New("error")).WithEventSink(sink)

	body := `{"to_doctor_id":"doc-2","patient_id":"pat-1","notes":"post-op"}`
	req := httptest.NewRequest(http.MethodPost, "/me/shares", strings.NewReader(body))
	req = asDoctor(req, "doc-1")
	rr := httptest.NewRecorder()
	h.Share(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got SharedRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Active)

	// The receiving doctor gets the event.
	require.Len(t, sink.envelopes, 1)
	assert.Equal(t, "patient.shared.v1", sink.envelopes[0].EventType)
	assert.Equal(t, "doc-2", sink.doctorIDs[0])
}

func TestShareRejectsSelf(t *testing.T) {
	h := NewHandler(newFakeShareRepo(), logging.New("error"))

	body := `{"to_doctor_id":"doc-1","patient_id":"pat-1"}`
	req := httptest.NewRequest(http.MethodPost, "/me/shares", strings.NewReader(body))
	req = asDoctor(req, "doc-1")
	rr := httptest.NewRecorder()
	h.Share(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListReceivedFiltersByDoctor(t *testing.T) {
	repo := newFakeShareRepo()
	repo.shares["sh-1"] = &SharedRecord{ID: "sh-1", FromDoctorID: "doc-1", ToDoctorID: "doc-2", Active: true}
	repo.shares["sh-2"] = &SharedRecord{ID: "sh-2", FromDoctorID: "doc-1", ToDoctorID: "doc-3", Active: true}
	h := NewHandler(repo, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/me/shares/received", nil)
	req = asDoctor(req, "doc-2")
	rr := httptest.NewRecorder()
	h.ListReceived(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestRevokeOnlyBySharer(t *testing.T) {
	repo := newFakeShareRepo()
	repo.shares["sh-1"] = &SharedRecord{ID: "sh-1", FromDoctorID: "doc-1", ToDoctorID: "doc-2", Active: true}
	h := NewHandler(repo, logging.New("error"))

	r := chi.NewRouter()
	r.Delete("/me/shares/{shareID}", h.Revoke)

	req := httptest.NewRequest(http.MethodDelete, "/me/shares/sh-1", nil)
	req = asDoctor(req, "doc-2")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/me/shares/sh-1", nil)
	req = asDoctor(req, "doc-1")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, repo.shares["sh-1"].Active)
}
