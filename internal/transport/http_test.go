package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aldervale/census/internal/domain/audit"
	"github.com/aldervale/census/internal/domain/facility"
	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/report"
	"github.com/aldervale/census/internal/domain/resident"
	"github.com/aldervale/census/internal/sqlite"
)

const testCenter = "center-1"

// newTestServer wires the full stack against an in-memory database, scoped to
// a fixed center.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	facilityRepo := sqlite.NewFacilityRepository(db)
	residentRepo := sqlite.NewResidentRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)
	reportRepo := sqlite.NewReportRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)

	facilitySvc := facility.NewService(facilityRepo, auditRepo, logger)
	_, err = facilitySvc.CreateCenter(context.Background(), facility.CreateCenterRequest{
		ID:   testCenter,
		Name: "Test Center",
	})
	require.NoError(t, err)

	server := NewServer(Services{
		Residents:  resident.NewService(residentRepo, logger),
		Facilities: facilitySvc,
		Occupancy:  occupancy.NewService(ledgerRepo, residentRepo, facilityRepo, auditRepo, logger),
		Reports:    report.NewService(reportRepo, logger),
		Audits:     audit.NewService(auditRepo, logger),
	}, logger)

	ts := httptest.NewServer(server.Router(StaticCenterMiddleware(testCenter)))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func createRoom(t *testing.T, ts *httptest.Server, number string, capacity int) string {
	t.Helper()
	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/rooms", map[string]any{
		"room_number": number,
		"floor":       1,
		"capacity":    capacity,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func createBed(t *testing.T, ts *httptest.Server, roomID, label string) string {
	t.Helper()
	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/beds", map[string]any{
		"room_id": roomID,
		"label":   label,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func registerResident(t *testing.T, ts *httptest.Server, firstName, lastName string) string {
	t.Helper()
	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/residents", map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}

func TestAdmissionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 2)
	bedID := createBed(t, ts, roomID, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	// Admit
	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, bedID, body["bed_id"])
	require.NotContains(t, body, "end_at")

	// The resident is now admitted
	resp, body = doJSON(t, ts, http.MethodGet, "/api/v1/residents/"+residentID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ADMITTED", body["status"])

	// A second admission of the same resident conflicts
	otherBed := createBed(t, ts, roomID, "B")
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      otherBed,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Discharge
	resp, body = doJSON(t, ts, http.MethodPost, "/api/v1/discharges", map[string]any{
		"resident_id": residentID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "end_at")

	// Discharge again: no active assignment
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/discharges", map[string]any{
		"resident_id": residentID,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAdmitFullRoom(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 1)
	bedA := createBed(t, ts, roomID, "A")
	bedB := createBed(t, ts, roomID, "B")
	first := registerResident(t, ts, "Marta", "Alvarez")
	second := registerResident(t, ts, "James", "Bennett")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": first,
		"bed_id":      bedA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": second,
		"bed_id":      bedB,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body["error"], "capacity")
}

func TestAdmitUnknownResident(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 1)
	bedID := createBed(t, ts, roomID, "A")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": "missing",
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransferEndpoint(t *testing.T) {
	ts := newTestServer(t)

	roomA := createRoom(t, ts, "101", 1)
	roomB := createRoom(t, ts, "102", 1)
	bedA := createBed(t, ts, roomA, "A")
	bedB := createBed(t, ts, roomB, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/transfers", map[string]any{
		"resident_id": residentID,
		"new_bed_id":  bedB,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := body["closed"].(map[string]any)
	opened := body["opened"].(map[string]any)
	require.Equal(t, bedA, closed["bed_id"])
	require.Contains(t, closed, "end_at")
	require.Equal(t, bedB, opened["bed_id"])

	// Open assignments reflect the move
	resp, body = doJSON(t, ts, http.MethodGet, "/api/v1/assignments?resident_id="+residentID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assignments := body["assignments"].([]any)
	require.Len(t, assignments, 1)
	require.Equal(t, bedB, assignments[0].(map[string]any)["bed_id"])
}

func TestTransferWithoutAdmission(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 1)
	bedID := createBed(t, ts, roomID, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/transfers", map[string]any{
		"resident_id": residentID,
		"new_bed_id":  bedID,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBedServiceEndpoint(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 2)
	bedID := createBed(t, ts, roomID, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Occupied beds cannot be taken out of service
	resp, _ = doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/v1/beds/%s/service", bedID), map[string]any{
		"in_service": false,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// After discharge it works
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/discharges", map[string]any{"resident_id": residentID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/v1/beds/%s/service", bedID), map[string]any{
		"in_service": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// An out-of-service bed rejects admissions
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestOccupancyReportEndpoint(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 2)
	bedID := createBed(t, ts, roomID, "A")
	createBed(t, ts, roomID, "B")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/v1/reports/occupancy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(2), body["total_beds"])
	require.Equal(t, float64(1), body["occupied"])
	require.Equal(t, float64(1), body["vacant"])
	require.Equal(t, float64(50), body["occupancy_rate"])

	resp, body = doJSON(t, ts, http.MethodGet, "/api/v1/reports/vacant-beds", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	beds := body["vacant_beds"].([]any)
	require.Len(t, beds, 1)
}

func TestAuditEndpoint(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 1)
	bedID := createBed(t, ts, roomID, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/v1/discharges", map[string]any{"resident_id": residentID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/v1/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]any)
	require.Len(t, entries, 2)
	// Newest first
	require.Equal(t, "resident_discharged", entries[0].(map[string]any)["type"])
	require.Equal(t, "resident_admitted", entries[1].(map[string]any)["type"])
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/admissions", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdmitAtExplicitTime(t *testing.T) {
	ts := newTestServer(t)

	roomID := createRoom(t, ts, "101", 1)
	bedID := createBed(t, ts, roomID, "A")
	residentID := registerResident(t, ts, "Marta", "Alvarez")

	at := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	resp, body := doJSON(t, ts, http.MethodPost, "/api/v1/admissions", map[string]any{
		"resident_id": residentID,
		"bed_id":      bedID,
		"at":          at.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	start, err := time.Parse(time.RFC3339, body["start_at"].(string))
	require.NoError(t, err)
	require.True(t, start.Equal(at))
}
