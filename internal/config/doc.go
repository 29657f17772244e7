// Package config loads the host configuration.
//
// The configuration is a single YAML file, by default
// ~/.config/mcphost/config.yaml, overridable with --config:
//
//	providers:
//	  - name: Math
//	    command: mcphost
//	    args: [demo-provider, math]
//	  - name: Remote
//	    url: http://localhost:8090/mcp
//	    headers:
//	      Authorization: Bearer token
//	timeouts:
//	  connect: 30s
//	  invoke: 60s
//	history:
//	  limit: 100
//	reasoner:
//	  kind: directive
//
// A missing file is not an error; defaults are used and no providers are
// configured. Validation problems are reported together as a
// ConfigurationErrorCollection so the user can fix them in one pass.
package config
