package sos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"helphop/internal/api/handlers/http/sos"
	mock_sos "helphop/internal/api/handlers/http/sos/mocks"
	"helphop/internal/domain"
	"helphop/internal/geo"
	"helphop/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func addChiURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

func newHandler(t *testing.T, ctrl *gomock.Controller) (*sos.Handler, *mock_sos.MockIntake, *mock_sos.MockLifecycle, *mock_sos.MockStatsGetter) {
	t.Helper()
	intake := mock_sos.NewMockIntake(ctrl)
	lifecycle := mock_sos.NewMockLifecycle(ctrl)
	stats := mock_sos.NewMockStatsGetter(ctrl)
	return sos.NewHandler(newTestLogger(), intake, lifecycle, stats), intake, lifecycle, stats
}

func TestSubmitSOS_Accepted_201(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, intake, _, _ := newHandler(t, ctrl)

	reqBody := `{"user_id":"user-1","type":"flood","message":"help","location":{"lat":12.98,"lng":77.60}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	wantReq := domain.SubmitSOSRequest{
		UserID:   "user-1",
		Type:     "flood",
		Message:  "help",
		Location: &geo.Point{Lat: 12.98, Lng: 77.60},
	}

	incident := &domain.Incident{
		ID:         uuid.New(),
		UserID:     "user-1",
		Status:     domain.IncidentPending,
		DistanceKm: 1.06,
		Direction:  "SW",
	}

	intake.EXPECT().
		Submit(gomock.Any(), wantReq).
		Return(domain.SubmitSOSResult{DistanceKm: 1.06, Direction: "SW", Incident: incident}, nil).
		Times(1)

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected %d got %d body=%s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	got := decodeJSON[map[string]any](t, rr)
	if got["distance_km"] != "1.06" {
		t.Fatalf("expected distance_km=1.06 got %v", got["distance_km"])
	}
	if got["direction"] != "SW" {
		t.Fatalf("expected direction=SW got %v", got["direction"])
	}
}

func TestSubmitSOS_Rejected_200(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, intake, _, _ := newHandler(t, ctrl)

	reqBody := `{"user_id":"user-1","location":{"lat":13.5,"lng":77.60}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	intake.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		Return(domain.SubmitSOSResult{
			Rejected:   true,
			Reason:     "outside rescue radius",
			DistanceKm: 58.74,
		}, nil).
		Times(1)

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}

	got := decodeJSON[map[string]any](t, rr)
	if got["status"] != "rejected" {
		t.Fatalf("expected status=rejected got %v", got["status"])
	}
	if got["distance_km"] != "58.74" {
		t.Fatalf("expected distance_km=58.74 got %v", got["distance_km"])
	}
}

func TestSubmitSOS_InvalidJSON_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString("{bad json"))
	rr := httptest.NewRecorder()

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestSubmitSOS_NonNumericLat_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	reqBody := `{"user_id":"user-1","location":{"lat":"not-a-number","lng":77.60}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestSubmitSOS_MissingLocation_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no intake expectations: an absent location must never reach the service
	h, _, _, _ := newHandler(t, ctrl)

	reqBody := `{"user_id":"user-1","type":"flood","message":"help"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestSubmitSOS_MissingUserID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	reqBody := `{"location":{"lat":12.98,"lng":77.60}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.SubmitSOS(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestListPending_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	want := []*domain.Incident{
		{ID: uuid.New(), Status: domain.IncidentPending},
	}

	lifecycle.EXPECT().
		ListPending(gomock.Any()).
		Return(want, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/pending", nil)
	rr := httptest.NewRecorder()

	h.ListPending(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestListAll_Pagination(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	lifecycle.EXPECT().
		List(gomock.Any(), 2, 10).
		Return([]*domain.Incident{}, int64(42), nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/?page=2&limit=10", nil)
	rr := httptest.NewRecorder()

	h.ListAll(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}

	got := decodeJSON[map[string]any](t, rr)
	if got["total"] != float64(42) {
		t.Fatalf("expected total=42 got %v", got["total"])
	}
}

func TestListByUser_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	lifecycle.EXPECT().
		ListByUser(gomock.Any(), "user-1").
		Return([]*domain.Incident{{ID: uuid.New(), UserID: "user-1"}}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/user/user-1", nil)
	req = addChiURLParam(req, "userId", "user-1")
	rr := httptest.NewRecorder()

	h.ListByUser(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestAssignRescuer_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	id := uuid.New()
	reqBody := `{"incident_id":"` + id.String() + `","rescuer_id":"rescuer-7"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/assign", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	lifecycle.EXPECT().
		AssignRescuer(gomock.Any(), id, "rescuer-7").
		Return(&domain.Incident{ID: id, Status: domain.IncidentBroadcasted, RescuerID: "rescuer-7"}, nil).
		Times(1)

	h.AssignRescuer(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestAssignRescuer_MissingRescuerID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	reqBody := `{"incident_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/assign", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	h.AssignRescuer(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestAcceptByID_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	id := uuid.New()

	lifecycle.EXPECT().
		Accept(gomock.Any(), id).
		Return(&domain.Incident{ID: id, Status: domain.IncidentAccepted}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/"+id.String()+"/accept", nil)
	req = addChiURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	h.AcceptByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestAcceptByID_InvalidID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/not-a-uuid/accept", nil)
	req = addChiURLParam(req, "id", "not-a-uuid")
	rr := httptest.NewRecorder()

	h.AcceptByID(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}

func TestResolve_NotFound_404(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	id := uuid.New()

	lifecycle.EXPECT().
		Resolve(gomock.Any(), id).
		Return(nil, e.ErrNotFound).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/"+id.String()+"/resolve", nil)
	req = addChiURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected %d got %d body=%s", http.StatusNotFound, rr.Code, rr.Body.String())
	}
}

func TestResolve_Terminal_409(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	id := uuid.New()

	lifecycle.EXPECT().
		Resolve(gomock.Any(), id).
		Return(nil, e.ErrTerminalState).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/"+id.String()+"/resolve", nil)
	req = addChiURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected %d got %d body=%s", http.StatusConflict, rr.Code, rr.Body.String())
	}
}

func TestRejectByID_ServiceError_500(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, lifecycle, _ := newHandler(t, ctrl)

	id := uuid.New()

	lifecycle.EXPECT().
		Reject(gomock.Any(), id).
		Return(nil, errors.New("boom")).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos/"+id.String()+"/reject", nil)
	req = addChiURLParam(req, "id", id.String())
	rr := httptest.NewRecorder()

	h.RejectByID(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d got %d body=%s", http.StatusInternalServerError, rr.Code, rr.Body.String())
	}
}

func TestSOSStats_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, stats := newHandler(t, ctrl)

	stats.EXPECT().
		GetStats(gomock.Any(), domain.StatsRequest{Minutes: 30}).
		Return(&domain.IncidentStats{
			ByStatus: map[domain.IncidentStatus]int64{domain.IncidentPending: 2},
			Total:    2,
			Minutes:  30,
		}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/stats?minutes=30", nil)
	rr := httptest.NewRecorder()

	h.SOSStats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d got %d body=%s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestSOSStats_InvalidMinutes_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _ := newHandler(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/stats?minutes=99999", nil)
	rr := httptest.NewRecorder()

	h.SOSStats(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d body=%s", http.StatusBadRequest, rr.Code, rr.Body.String())
	}
}
