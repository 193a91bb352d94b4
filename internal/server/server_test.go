package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/pipeline"
	"github.com/matzehuels/storyshuffle/pkg/session"
)

const testManuscript = "alpha\n\n* * *\n\nbravo\n\n* * *\n\ncharlie\n\n* * *\n\ndelta"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := New(runner, session.NewMemoryStore(), logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/validate", shuffleRequest{
		Manuscript: testManuscript,
		Rules: manuscript.Rules{
			Sections: []manuscript.SectionRule{
				{Ref: 1, Fixed: true},
				{Ref: 2, Before: []int{3}},
			},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[validateResponse](t, resp)
	if !body.Valid || body.Sections != 4 || body.Constraints != 1 || body.Fixed != 1 {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/validate", shuffleRequest{
		Manuscript: testManuscript,
		Rules: manuscript.Rules{
			Sections: []manuscript.SectionRule{
				{Ref: 2, Before: []int{3}},
				{Ref: 3, Before: []int{2}},
			},
		},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	body := decodeBody[errorResponse](t, resp)
	if string(body.Error.Code) != "CYCLE_DETECTED" {
		t.Errorf("error code = %q, want CYCLE_DETECTED", body.Error.Code)
	}
}

func TestShuffle(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/shuffle", shuffleRequest{
		Manuscript: testManuscript,
		Rules: manuscript.Rules{
			Sections: []manuscript.SectionRule{{Ref: 1, Fixed: true}},
		},
		Seed: 7,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[shuffleResponse](t, resp)
	if body.Sections != 4 || body.Seed != 7 {
		t.Errorf("unexpected response: %+v", body)
	}
	if len(body.Order) != 4 || body.Order[0] != "1" {
		t.Errorf("Order = %v, want pinned section first", body.Order)
	}
	if !strings.HasPrefix(body.Output, "alpha") {
		t.Errorf("Output should start with pinned section:\n%s", body.Output)
	}
}

func TestShuffleEchoesDefaultSeed(t *testing.T) {
	ts := newTestServer(t)

	// No seed in the request: the response must carry the seed that was
	// actually used, so replaying it reproduces the same ordering.
	resp := postJSON(t, ts.URL+"/api/shuffle", shuffleRequest{
		Manuscript: testManuscript,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[shuffleResponse](t, resp)
	if body.Seed != pipeline.DefaultSeed {
		t.Errorf("Seed = %d, want %d", body.Seed, pipeline.DefaultSeed)
	}
}

func TestShuffleMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/shuffle", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestShuffleMissingManuscript(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/shuffle", shuffleRequest{})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if string(body.Error.Code) != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", body.Error.Code)
	}
}

func TestGraphDOT(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/graph", map[string]any{
		"manuscript": testManuscript,
		"format":     "dot",
		"rules": manuscript.Rules{
			Sections: []manuscript.SectionRule{{Ref: 2, Before: []int{3}}},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `"2" -> "3";`) {
		t.Errorf("DOT missing edge:\n%s", data)
	}
}

func TestWorkspaceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Create
	resp := postJSON(t, ts.URL+"/api/workspaces", workspaceRequest{
		Name:       "draft",
		Manuscript: testManuscript,
		Rules: manuscript.Rules{
			Sections: []manuscript.SectionRule{{Ref: 1, Fixed: true}},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	ws := decodeBody[session.Workspace](t, resp)
	if ws.ID == "" {
		t.Fatal("created workspace has no ID")
	}

	// Get
	resp, err := http.Get(ts.URL + "/api/workspaces/" + ws.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	got := decodeBody[session.Workspace](t, resp)
	if got.Name != "draft" {
		t.Errorf("Name = %q, want draft", got.Name)
	}

	// List
	resp, err = http.Get(ts.URL + "/api/workspaces")
	if err != nil {
		t.Fatal(err)
	}
	list := decodeBody[map[string][]string](t, resp)
	if len(list["workspaces"]) != 1 || list["workspaces"][0] != ws.ID {
		t.Errorf("List = %v, want [%s]", list["workspaces"], ws.ID)
	}

	// Shuffle the stored workspace twice with the same seed
	shuffleOnce := func() shuffleResponse {
		resp := postJSON(t, ts.URL+"/api/workspaces/"+ws.ID+"/shuffle", workspaceShuffleRequest{Seed: 9})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("shuffle status = %d, want 200", resp.StatusCode)
		}
		return decodeBody[shuffleResponse](t, resp)
	}
	first := shuffleOnce()
	second := shuffleOnce()
	if first.Output != second.Output {
		t.Error("workspace shuffle with same seed should be deterministic")
	}
	if first.Order[0] != "1" {
		t.Errorf("pinned section not first: %v", first.Order)
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/workspaces/"+ws.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	// Gone
	resp, err = http.Get(ts.URL + "/api/workspaces/" + ws.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if string(body.Error.Code) != "WORKSPACE_NOT_FOUND" {
		t.Errorf("error code = %q, want WORKSPACE_NOT_FOUND", body.Error.Code)
	}
}

func TestWorkspaceShuffleNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/workspaces/nope/shuffle", workspaceShuffleRequest{})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}
