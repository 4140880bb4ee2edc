package httpclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cogniflow/orchestrator/pkg/config"
	"github.com/cogniflow/orchestrator/pkg/engine"
	"github.com/cogniflow/orchestrator/pkg/eventbus"
	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/executor"
	"github.com/cogniflow/orchestrator/pkg/httpclient"
	"github.com/cogniflow/orchestrator/pkg/registry"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// TestNamedHTTPClient_Integration exercises a TOOL/REST node resolving its
// *http.Client from a named httpclient.Registry entry end to end through the
// engine, rather than unit-testing the registry in isolation.
func TestNamedHTTPClient_Integration(t *testing.T) {
	basicAuthServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != "testuser" || password != "testpass" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("authenticated with basic auth"))
	}))
	defer basicAuthServer.Close()

	bearerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("authenticated with bearer token"))
	}))
	defer bearerServer.Close()

	customHeaderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "my-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("missing api key"))
			return
		}
		if r.Header.Get("User-Agent") != "MyApp/1.0" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("invalid user agent"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("custom headers validated"))
	}))
	defer customHeaderServer.Close()

	engineConfig := config.Testing()
	engineConfig.HTTPClients = []config.HTTPClientConfig{
		{
			Name:        "basic-auth-client",
			Description: "Client with basic authentication",
			AuthType:    "basic",
			Username:    "testuser",
			Password:    "testpass",
			Timeout:     30 * time.Second,
		},
		{
			Name:        "bearer-token-client",
			Description: "Client with bearer token",
			AuthType:    "bearer",
			Token:       "secret-token-123",
			Timeout:     30 * time.Second,
		},
		{
			Name:        "custom-headers-client",
			Description: "Client with custom headers",
			AuthType:    "none",
			Timeout:     30 * time.Second,
			DefaultHeaders: map[string]string{
				"X-API-Key":  "my-api-key",
				"User-Agent": "MyApp/1.0",
			},
		},
	}

	builder := httpclient.NewBuilder(*engineConfig)
	reg := httpclient.NewRegistry()
	for _, clientConfig := range engineConfig.HTTPClients {
		httpClientConfig := httpclient.FromConfigHTTPClient(clientConfig)
		client, err := builder.Build(httpClientConfig)
		if err != nil {
			t.Fatalf("Failed to build HTTP client %q: %v", clientConfig.Name, err)
		}
		if err := reg.Register(clientConfig.Name, client); err != nil {
			t.Fatalf("Failed to register HTTP client %q: %v", clientConfig.Name, err)
		}
	}

	runHTTPNode := func(t *testing.T, url, clientName string, withRegistry bool) (string, error) {
		t.Helper()

		proc := executor.NewRESTProcessor(restTestConfig())
		if withRegistry {
			proc.SetHTTPClientRegistry(reg)
		}
		procRegistry := executor.NewRegistry()
		procRegistry.MustRegister(proc)

		node := types.NodeMetamodel{
			ID: "http-1", Name: "http-1", Enabled: true,
			Type: types.NodeTypeTool, ToolType: "REST",
			REST: &types.RESTConfig{BaseURI: url, Method: http.MethodGet, ClientName: clientName},
			OutputPorts: []types.Port{
				{Key: "body", Role: types.PortRoleResFullBody, Schema: types.PortSchema{Kind: types.SchemaString}},
			},
		}
		wf := types.WorkflowMetamodel{
			ID:      "wf-http",
			Enabled: true,
			Nodes:   []types.WorkflowNode{{ID: "http-1", NodeMetamodelID: "http-1", ExecutionType: types.ExecutionTypeDefault}},
		}
		inst := &types.WorkflowInstance{
			ID:            "wf-http-inst",
			Metamodel:     wf,
			NodeInstances: map[string]*types.NodeInstance{"http-1": {ID: "http-1", Metamodel: node}},
		}

		nodePool := registry.NewNodePool(eventbus.New(), func(id string) (types.NodeMetamodel, error) {
			return types.NodeMetamodel{}, nil
		})
		eng := engine.New(procRegistry, nodePool)

		ectx := execctx.New()
		report, err := eng.Execute(context.Background(), inst, ectx)
		if err != nil {
			return "", err
		}
		if !report.Success {
			return "", fmt.Errorf("%s", report.NodeExecutions["http-1"].Error)
		}
		body, _ := ectx.Get("body")
		out, _ := body.(string)
		return out, nil
	}

	t.Run("basic auth client", func(t *testing.T) {
		out, err := runHTTPNode(t, basicAuthServer.URL, "basic-auth-client", true)
		if err != nil {
			t.Fatalf("Workflow execution failed: %v", err)
		}
		if out != "authenticated with basic auth" {
			t.Errorf("Expected 'authenticated with basic auth', got %v", out)
		}
	})

	t.Run("bearer token client", func(t *testing.T) {
		out, err := runHTTPNode(t, bearerServer.URL, "bearer-token-client", true)
		if err != nil {
			t.Fatalf("Workflow execution failed: %v", err)
		}
		if out != "authenticated with bearer token" {
			t.Errorf("Expected 'authenticated with bearer token', got %v", out)
		}
	})

	t.Run("custom headers client", func(t *testing.T) {
		out, err := runHTTPNode(t, customHeaderServer.URL, "custom-headers-client", true)
		if err != nil {
			t.Fatalf("Workflow execution failed: %v", err)
		}
		if out != "custom headers validated" {
			t.Errorf("Expected 'custom headers validated', got %v", out)
		}
	})

	t.Run("default client (no client name)", func(t *testing.T) {
		simpleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("default client response"))
		}))
		defer simpleServer.Close()

		out, err := runHTTPNode(t, simpleServer.URL, "", true)
		if err != nil {
			t.Fatalf("Workflow execution failed: %v", err)
		}
		if out != "default client response" {
			t.Errorf("Expected 'default client response', got %v", out)
		}
	})

	t.Run("non-existent client", func(t *testing.T) {
		_, err := runHTTPNode(t, basicAuthServer.URL, "non-existent-client", true)
		if err == nil {
			t.Error("Expected error for non-existent client, got nil")
		}
	})

	t.Run("no registry configured", func(t *testing.T) {
		_, err := runHTTPNode(t, basicAuthServer.URL, "basic-auth-client", false)
		if err == nil {
			t.Error("Expected error when registry not configured, got nil")
		}
	})
}

func restTestConfig() executor.RESTProcessorConfig {
	cfg := executor.DefaultRESTProcessorConfig()
	cfg.BlockLocalhost = false
	cfg.BlockPrivateIPs = false
	return cfg
}

// TestHTTPClientConfig_FromConfig tests the conversion from config.HTTPClientConfig
func TestHTTPClientConfig_FromConfig(t *testing.T) {
	configClient := config.HTTPClientConfig{
		Name:                "test-client",
		Description:         "Test client",
		AuthType:            "basic",
		Username:            "user",
		Password:            "pass",
		Timeout:             60 * time.Second,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 5,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     120 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
		DisableKeepAlives:   true,
		MaxRedirects:        5,
		MaxResponseSize:     5 * 1024 * 1024,
		FollowRedirects:     false,
		DefaultHeaders: map[string]string{
			"X-Custom": "value",
		},
		DefaultQueryParams: map[string]string{
			"api_key": "secret",
		},
		BaseURL: "https://api.example.com",
	}

	httpClient := httpclient.FromConfigHTTPClient(configClient)

	if httpClient.Name != configClient.Name {
		t.Errorf("Name = %v, want %v", httpClient.Name, configClient.Name)
	}
	if httpClient.Description != configClient.Description {
		t.Errorf("Description = %v, want %v", httpClient.Description, configClient.Description)
	}
	if string(httpClient.AuthType) != configClient.AuthType {
		t.Errorf("AuthType = %v, want %v", httpClient.AuthType, configClient.AuthType)
	}
	if httpClient.Username != configClient.Username {
		t.Errorf("Username = %v, want %v", httpClient.Username, configClient.Username)
	}
	if httpClient.Password != configClient.Password {
		t.Errorf("Password = %v, want %v", httpClient.Password, configClient.Password)
	}
	if httpClient.Timeout != configClient.Timeout {
		t.Errorf("Timeout = %v, want %v", httpClient.Timeout, configClient.Timeout)
	}
	if httpClient.MaxIdleConns != configClient.MaxIdleConns {
		t.Errorf("MaxIdleConns = %v, want %v", httpClient.MaxIdleConns, configClient.MaxIdleConns)
	}
	if httpClient.BaseURL != configClient.BaseURL {
		t.Errorf("BaseURL = %v, want %v", httpClient.BaseURL, configClient.BaseURL)
	}

	if httpClient.DefaultHeaders["X-Custom"] != "value" {
		t.Error("DefaultHeaders not copied correctly")
	}
	if httpClient.DefaultQueryParams["api_key"] != "secret" {
		t.Error("DefaultQueryParams not copied correctly")
	}
}
