// Package security provides security controls and validation for workflow execution.
//
// # Overview
//
// The package's one control is SSRFProtection, which checks a URL for
// server-side request forgery targets before it is requested. It offers no
// input validation, output sanitization, resource limits, rate limiting,
// access control or policy engine.
//
// # URL Checks
//
// ValidateURL rejects a URL when:
//
//   - it does not parse, or its scheme is not allowed (AllowedSchemes;
//     http and https when empty)
//   - it has no hostname
//   - the hostname is in BlockedDomains, or AllowedDomains is non-empty and
//     does not contain it (exact, case-insensitive match; no wildcards)
//   - the host is an IP literal, or a name that resolves to addresses, that
//     a Block* setting covers: localhost, private ranges, link-local, or
//     cloud metadata addresses
//   - the hostname is one of the fixed localhost or cloud metadata names
//     (for example localhost or metadata.google.internal)
//
// A hostname that does not resolve is accepted once the checks above pass.
//
// # Basic Usage
//
//	import "github.com/cogniflow/orchestrator/pkg/security"
//
//	// DefaultSSRFConfig: http and https, every Block* setting on
//	p := security.NewSSRFProtection()
//	if err := p.ValidateURL(url); err != nil {
//	    return fmt.Errorf("URL not allowed: %w", err)
//	}
//
//	// Restrict requests to named hosts
//	cfg := security.DefaultSSRFConfig()
//	cfg.AllowedDomains = []string{"api.example.com"}
//	p = security.NewSSRFProtectionWithConfig(cfg)
//
// # Thread Safety
//
// An SSRFProtection is not modified after construction, so ValidateURL can
// be called concurrently from multiple goroutines.
package security
