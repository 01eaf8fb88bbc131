package canvass

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GroundGame/Canvass-Backend/internal/utils"
)

// stubFetcher implements middleware.SessionFetcher without a database.
type stubFetcher struct{}

func (stubFetcher) FindSessionByID(id string) (utils.SessionData, error) {
	return utils.SessionData{
		UserID:    "organizer-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	Core = NewEngine(newMemStore(), &recordingDispatcher{})
	srv := httptest.NewServer(SetupRoutes(stubFetcher{}, 600))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}, withSession bool) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if withSession {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "test-session"})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func createZoneHTTP(t *testing.T, srv *httptest.Server) Zone {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/zones", CreateZoneRequest{
		Name:        "Maple Heights",
		Addresses:   []string{"123 Main St", "124 Main St"},
		Coordinates: []string{"39.1,-86.5", "39.1,-86.6"},
	}, true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create zone status = %d", resp.StatusCode)
	}
	var zone Zone
	if err := json.NewDecoder(resp.Body).Decode(&zone); err != nil {
		t.Fatalf("decode zone: %v", err)
	}
	return zone
}

func TestCreateZoneHandler(t *testing.T) {
	srv := setupTestServer(t)

	zone := createZoneHTTP(t, srv)
	if zone.TotalBuildings != 2 {
		t.Errorf("total buildings = %d, want 2", zone.TotalBuildings)
	}
	if len(zone.OddHouseNumbers) != 1 || len(zone.EvenHouseNumbers) != 1 {
		t.Errorf("parity partitions = %v / %v", zone.OddHouseNumbers, zone.EvenHouseNumbers)
	}
}

func TestCreateAssignmentHandler_RequiresSession(t *testing.T) {
	srv := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/assignments", map[string]string{}, false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAssignmentFlowOverHTTP(t *testing.T) {
	srv := setupTestServer(t)
	zone := createZoneHTTP(t, srv)

	t0 := time.Now().Add(time.Hour).UTC()

	resp := doJSON(t, http.MethodPost, srv.URL+"/assignments", map[string]interface{}{
		"zone_id":        zone.ID,
		"agent_id":       "agent-a",
		"effective_from": t0,
	}, true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create assignment status = %d", resp.StatusCode)
	}
	var rec AssignmentRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.AssignedBy != "organizer-1" {
		t.Errorf("assigned_by = %q, want session user", rec.AssignedBy)
	}

	// A backfill overlapping the existing window is a 409.
	conflictResp := doJSON(t, http.MethodPost, srv.URL+"/assignments", map[string]interface{}{
		"zone_id":        zone.ID,
		"team_id":        "team-b",
		"effective_from": t0.Add(-time.Minute),
	}, true)
	defer conflictResp.Body.Close()
	if conflictResp.StatusCode != http.StatusConflict {
		t.Errorf("overlap status = %d, want 409", conflictResp.StatusCode)
	}

	// Cancel, then summary shows no active subject.
	cancelResp := doJSON(t, http.MethodDelete, srv.URL+"/assignments/"+rec.ID.String(), nil, true)
	defer cancelResp.Body.Close()
	if cancelResp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", cancelResp.StatusCode)
	}

	summaryResp := doJSON(t, http.MethodGet, srv.URL+"/zones/"+zone.ID.String()+"/summary", nil, false)
	defer summaryResp.Body.Close()
	var summary ZoneSummary
	if err := json.NewDecoder(summaryResp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ActiveAgentID != nil || summary.ActiveTeamID != nil {
		t.Errorf("summary still has an active subject: %+v", summary)
	}
}

func TestRecordVisitHandler_UnknownBuilding(t *testing.T) {
	srv := setupTestServer(t)
	zone := createZoneHTTP(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/zones/"+zone.ID.String()+"/visits", map[string]string{
		"building_key": "999 Nowhere Ln",
		"status":       VisitVisited,
	}, true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSweepHandlerOverHTTP(t *testing.T) {
	srv := setupTestServer(t)
	zone := createZoneHTTP(t, srv)

	scheduleResp := doJSON(t, http.MethodPost, srv.URL+"/assignments/schedule", map[string]interface{}{
		"zone_id":        zone.ID,
		"agent_id":       "agent-a",
		"scheduled_date": time.Now().Add(time.Millisecond).UTC(),
	}, true)
	defer scheduleResp.Body.Close()
	if scheduleResp.StatusCode != http.StatusCreated {
		t.Fatalf("schedule status = %d", scheduleResp.StatusCode)
	}

	time.Sleep(5 * time.Millisecond) // let the intent come due

	sweepResp := doJSON(t, http.MethodPost, srv.URL+"/scheduler/sweep", nil, true)
	defer sweepResp.Body.Close()
	var report SweepReport
	if err := json.NewDecoder(sweepResp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Activated) != 1 {
		t.Errorf("activated = %v, want one", report.Activated)
	}
}
