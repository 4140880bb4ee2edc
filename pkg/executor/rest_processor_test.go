package executor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func testRESTConfig() RESTProcessorConfig {
	cfg := DefaultRESTProcessorConfig()
	cfg.BlockLocalhost = false
	cfg.BlockPrivateIPs = false
	return cfg
}

func TestRESTProcessorRoundTripsBodyFieldAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   "123",
			"name": body["name"],
		})
	}))
	defer srv.Close()

	p := NewRESTProcessor(testRESTConfig())
	ectx := execctx.New()
	_ = ectx.Put("name", "ada")

	node := types.NodeMetamodel{
		Type: types.NodeTypeTool, ToolType: types.ToolTypeREST,
		InputPorts: []types.Port{{Key: "name", Role: types.PortRoleReqBodyField}},
		OutputPorts: []types.Port{
			{Key: "id", Role: types.PortRoleResBodyField},
			{Key: "status", Role: types.PortRoleResStatus},
		},
		REST: &types.RESTConfig{BaseURI: srv.URL, Method: http.MethodPost},
	}

	if err := p.Process(t.Context(), ectx, node, &types.NodeDetail{}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	id, ok := ectx.Get("id")
	if !ok || id != "123" {
		t.Fatalf("expected id=123, got %v (ok=%v)", id, ok)
	}
	status, ok := ectx.Get("status")
	if !ok || status.(float64) != http.StatusCreated {
		t.Fatalf("expected status=201, got %v", status)
	}
}

func TestRESTProcessorPathAndQuerySubstitution(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := NewRESTProcessor(testRESTConfig())
	ectx := execctx.New()
	_ = ectx.Put("id", "42")
	_ = ectx.Put("q", "hello")

	node := types.NodeMetamodel{
		Type: types.NodeTypeTool, ToolType: types.ToolTypeREST,
		InputPorts: []types.Port{
			{Key: "id", Role: types.PortRoleReqPathVariable},
			{Key: "q", Role: types.PortRoleReqQueryParameter},
		},
		REST: &types.RESTConfig{BaseURI: srv.URL + "/items/{id}", Method: http.MethodGet},
	}

	if err := p.Process(t.Context(), ectx, node, &types.NodeDetail{}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gotPath != "/items/42" {
		t.Fatalf("expected path /items/42, got %q", gotPath)
	}
	if gotQuery != "hello" {
		t.Fatalf("expected query q=hello, got %q", gotQuery)
	}
}

func TestRESTProcessorRequiresAllowHTTP(t *testing.T) {
	cfg := testRESTConfig()
	cfg.AllowHTTP = false
	p := NewRESTProcessor(cfg)
	ectx := execctx.New()
	node := types.NodeMetamodel{
		Type: types.NodeTypeTool, ToolType: types.ToolTypeREST,
		REST: &types.RESTConfig{BaseURI: "http://example.com"},
	}
	if err := p.Process(t.Context(), ectx, node, &types.NodeDetail{}); err != ErrHTTPNotAllowed {
		t.Fatalf("expected ErrHTTPNotAllowed, got %v", err)
	}
}
