package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/httpclient"
	"github.com/cogniflow/orchestrator/pkg/security"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// RESTProcessorConfig carries the zero-trust HTTP policy the teacher's
// engine.Config exposed (AllowHTTP, SSRF toggles, size/redirect limits),
// generalized from a single global workflow config to a reusable processor
// config.
type RESTProcessorConfig struct {
	AllowHTTP          bool
	BlockPrivateIPs    bool
	BlockLocalhost     bool
	BlockLinkLocal     bool
	BlockCloudMetadata bool
	AllowedDomains     []string
	MaxResponseSize    int64
	MaxRedirects       int
	MaxAttempts        int
	InitialBackoff     time.Duration
}

// DefaultRESTProcessorConfig mirrors the teacher's zero-trust defaults.
func DefaultRESTProcessorConfig() RESTProcessorConfig {
	return RESTProcessorConfig{
		AllowHTTP:          true,
		BlockPrivateIPs:    true,
		BlockLocalhost:     true,
		BlockLinkLocal:     true,
		BlockCloudMetadata: true,
		MaxResponseSize:    10 << 20, // 10 MiB
		MaxRedirects:       5,
		MaxAttempts:        2,
		InitialBackoff:     200 * time.Millisecond,
	}
}

// RESTProcessor implements NodeProcessor for TOOL/REST nodes. Grounded on
// the teacher's HTTPExecutor (shared connection pool, SSRF validation via
// pkg/security) generalized from a single GET-and-return-body node to full
// method/headers/body/path/query port binding plus one retry with
// exponential backoff, adapted from the teacher's RetryExecutor backoff math.
type RESTProcessor struct {
	cfg      RESTProcessorConfig
	mu       sync.RWMutex
	client   *http.Client
	registry *httpclient.Registry
}

// NewRESTProcessor builds a RESTProcessor sharing one pooled *http.Client
// across every TOOL/REST node instance.
func NewRESTProcessor(cfg RESTProcessorConfig) *RESTProcessor {
	return &RESTProcessor{cfg: cfg}
}

// SetHTTPClientRegistry wires a named-client registry in. Nodes whose
// RESTConfig.ClientName is set resolve their *http.Client from it instead of
// the processor's shared default client.
func (p *RESTProcessor) SetHTTPClientRegistry(reg *httpclient.Registry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry = reg
}

func (p *RESTProcessor) Family() string { return "TOOL/REST" }

func (p *RESTProcessor) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	if node.REST == nil {
		return ErrMissingTypeConfig
	}
	if !p.cfg.AllowHTTP {
		return ErrHTTPNotAllowed
	}
	cfg := node.REST

	req, err := p.buildRequest(ctx, ectx, node, cfg)
	if err != nil {
		return err
	}

	resp, err := p.doWithRetry(req, cfg.ClientName)
	if err != nil {
		return fmt.Errorf("REST node request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, p.cfg.MaxResponseSize)
	if err != nil {
		return err
	}

	if err := validateResponseSchema(cfg.ResponseSchema, body); err != nil {
		return err
	}

	return p.writeOutputs(ectx, node, resp, body)
}

func (p *RESTProcessor) buildRequest(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, cfg *types.RESTConfig) (*http.Request, error) {
	uri := cfg.BaseURI
	query := url.Values{}
	var bodyFields map[string]interface{}
	var rawBody interface{}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	for _, port := range node.InputPorts {
		val, ok := ectx.Get(port.Key)
		if !ok {
			continue
		}
		switch port.Role {
		case types.PortRoleReqPathVariable:
			uri = strings.ReplaceAll(uri, "{"+port.Key+"}", fmt.Sprint(val))
		case types.PortRoleReqQueryParameter:
			query.Set(port.Key, fmt.Sprint(val))
		case types.PortRoleReqHeader:
			headers[port.Key] = fmt.Sprint(val)
		case types.PortRoleReqBody:
			rawBody = val
		case types.PortRoleReqBodyField:
			if bodyFields == nil {
				bodyFields = make(map[string]interface{})
			}
			bodyFields[port.Key] = val
		}
	}

	if len(query) > 0 {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri = uri + sep + query.Encode()
	}

	var bodyReader io.Reader
	if rawBody != nil {
		b, err := json.Marshal(rawBody)
		if err != nil {
			return nil, fmt.Errorf("REST node failed to marshal body: %w", err)
		}
		bodyReader = strings.NewReader(string(b))
	} else if bodyFields != nil {
		b, err := json.Marshal(bodyFields)
		if err != nil {
			return nil, fmt.Errorf("REST node failed to marshal body fields: %w", err)
		}
		bodyReader = strings.NewReader(string(b))
	}

	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("REST node built an invalid request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (p *RESTProcessor) writeOutputs(ectx *execctx.ExecutionContext, node types.NodeMetamodel, resp *http.Response, body []byte) error {
	for _, port := range node.OutputPorts {
		switch port.Role {
		case types.PortRoleResFullBody:
			var parsed interface{}
			if json.Unmarshal(body, &parsed) == nil {
				if err := ectx.Put(port.Key, parsed); err != nil {
					return err
				}
			} else if err := ectx.Put(port.Key, string(body)); err != nil {
				return err
			}
		case types.PortRoleResBodyField:
			result := gjson.GetBytes(body, port.Key)
			if result.Exists() {
				if err := ectx.Put(port.Key, result.Value()); err != nil {
					return err
				}
			}
		case types.PortRoleResStatus:
			if err := ectx.Put(port.Key, resp.StatusCode); err != nil {
				return err
			}
		case types.PortRoleResHeaders:
			hdrs := make(map[string]interface{}, len(resp.Header))
			for k, v := range resp.Header {
				if len(v) > 0 {
					hdrs[k] = v[0]
				}
			}
			if err := ectx.Put(port.Key, hdrs); err != nil {
				return err
			}
		}
	}
	return nil
}

// doWithRetry performs the request, retrying once per the teacher's
// RetryExecutor exponential-backoff shape on a transient network error.
func (p *RESTProcessor) doWithRetry(req *http.Request, clientName string) (*http.Response, error) {
	client, err := p.resolveClient(clientName)
	if err != nil {
		return nil, err
	}

	if err := isAllowedURL(req.URL.String(), p.cfg); err != nil {
		return nil, err
	}

	maxAttempts := p.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	delay := p.cfg.InitialBackoff
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		var netErr net.Error
		if !(isNetError(err, &netErr) && netErr.Timeout()) {
			return nil, err
		}
		if attempt < maxAttempts {
			time.Sleep(time.Duration(float64(delay) * math.Pow(2, float64(attempt-1))))
		}
	}
	return nil, lastErr
}

func isNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// resolveClient returns the named client from the registry, or the shared
// default client when clientName is empty.
func (p *RESTProcessor) resolveClient(clientName string) (*http.Client, error) {
	if clientName == "" {
		return p.sharedClient(), nil
	}
	p.mu.RLock()
	reg := p.registry
	p.mu.RUnlock()
	if reg == nil {
		return nil, ErrUnknownHTTPClient
	}
	httpClient, _, err := reg.GetHTTPClient(clientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHTTPClient, clientName)
	}
	return httpClient, nil
}

func (p *RESTProcessor) sharedClient() *http.Client {
	p.mu.RLock()
	if p.client != nil {
		defer p.mu.RUnlock()
		return p.client
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client
	}
	p.client = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			MaxConnsPerHost:       100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= p.cfg.MaxRedirects {
				return fmt.Errorf("too many redirects (max %d)", p.cfg.MaxRedirects)
			}
			return isAllowedURL(req.URL.String(), p.cfg)
		},
	}
	return p.client
}

func isAllowedURL(rawURL string, cfg RESTProcessorConfig) error {
	protection := security.NewSSRFProtectionWithConfig(security.SSRFConfig{
		AllowedSchemes:     []string{"http", "https"},
		BlockPrivateIPs:    cfg.BlockPrivateIPs,
		BlockLocalhost:     cfg.BlockLocalhost,
		BlockLinkLocal:     cfg.BlockLinkLocal,
		BlockCloudMetadata: cfg.BlockCloudMetadata,
		AllowedDomains:     cfg.AllowedDomains,
	})
	if err := protection.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("%w: %v", ErrURLNotAllowed, err)
	}
	return nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(r, limit+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}
