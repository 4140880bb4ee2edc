// Package config provides configuration management for the Thaiyyal workflow engine.
//
// # Overview
//
// The config package centralizes configuration for the workflow engine as a
// plain struct with preset constructors and validation. It does not read
// environment variables or files and has no hot-reload.
//
// # Features
//
//   - Centralized configuration: Single source of truth
//   - Type-safe: Strongly typed configuration options
//   - Validation: Config.Validate rejects negative limits and durations
//   - Defaults: Default, Development, Production and Testing presets
//   - Copying: Config.Clone returns an independent copy
//
// # Configuration Structure
//
// The configuration is organized into logical sections:
//
//   - Execution limits: Timeouts and iteration limits
//   - HTTP settings: HTTP request configuration
//   - Security: Network access control and restrictions
//   - Cache settings: Cache TTL and size limits
//   - Resource limits: Memory and size constraints
//   - Retry settings: Retry and backoff configuration
//
// # Basic Usage
//
//import "github.com/cogniflow/orchestrator/pkg/config"
//
//// Create default configuration
//cfg := config.Default()
//
//// Use with the named HTTP client builder
//builder := httpclient.NewBuilder(*cfg)
//
// # Custom Configuration
//
//cfg := config.Default()
//cfg.MaxExecutionTime = 10 * time.Minute
//cfg.HTTPTimeout = 30 * time.Second
//cfg.MaxNodes = 1000
//if err := cfg.Validate(); err != nil {
//    // handle invalid configuration
//}
//
// # Default Configuration
//
// The default configuration provides secure, production-ready defaults:
//
//MaxExecutionTime: 5 minutes
//MaxNodeExecutionTime: 30 seconds
//MaxIterations: 10000
//HTTPTimeout: 30 seconds
//MaxHTTPRedirects: 10
//MaxResponseSize: 10MB
//AllowHTTP: false (HTTPS only)
//AllowPrivateIPs: false
//AllowLocalhost: false
//AllowLinkLocal: false
//AllowCloudMetadata: false
//DefaultCacheTTL: 1 hour
//MaxCacheSize: 1000
//MaxNodes: 1000
//MaxEdges: 5000
//DefaultMaxAttempts: 3
//DefaultBackoff: 1 second
//
// # Thread Safety
//
// Configuration objects are safe for concurrent read access.
package config
