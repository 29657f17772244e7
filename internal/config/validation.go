package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration and returns a *ConfigurationErrorCollection
// describing every problem found, or nil.
func Validate(cfg HostConfig, filePath string) error {
	var errs ConfigurationErrorCollection
	add := func(field, msg string, suggestions ...string) {
		errs.Add(ConfigurationError{
			FilePath:    filePath,
			Field:       field,
			ErrorType:   "validation",
			Message:     msg,
			Suggestions: suggestions,
		})
	}

	seen := make(map[string]int, len(cfg.Providers))
	for i, p := range cfg.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		name := strings.TrimSpace(p.Name)
		if name == "" {
			add(field+".name", "provider name is required")
		} else if name != p.Name {
			add(field+".name", fmt.Sprintf("provider name %q has leading or trailing whitespace", p.Name),
				fmt.Sprintf("use %q", name))
		} else if first, dup := seen[name]; dup {
			add(field+".name", fmt.Sprintf("duplicate provider name %q", name),
				fmt.Sprintf("rename it; providers[%d] already uses this name", first))
		} else {
			seen[name] = i
		}
		hasCommand, hasURL := strings.TrimSpace(p.Command) != "", strings.TrimSpace(p.URL) != ""
		switch {
		case !hasCommand && !hasURL:
			add(field+".command", "command or url is required",
				"set the executable that starts the provider, e.g. 'mcphost' with args [demo-provider, math]",
				"or set url to the provider's streamable HTTP endpoint")
		case hasCommand && hasURL:
			add(field+".url", "command and url are mutually exclusive")
		case hasURL:
			if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				add(field+".url", fmt.Sprintf("invalid url %q", p.URL), "use an absolute http:// or https:// URL")
			}
		}
	}

	if cfg.Timeouts.Connect < 0 {
		add("timeouts.connect", "must not be negative")
	}
	if cfg.Timeouts.Invoke < 0 {
		add("timeouts.invoke", "must not be negative")
	}
	if cfg.History.Limit < 0 {
		add("history.limit", "must not be negative")
	}

	switch cfg.Reasoner.Kind {
	case ReasonerDirective:
	case ReasonerAzureOpenAI:
		if cfg.Reasoner.Azure.Endpoint == "" {
			add("reasoner.azure.endpoint", "endpoint is required for the azure-openai reasoner")
		}
		if cfg.Reasoner.Azure.Deployment == "" {
			add("reasoner.azure.deployment", "deployment is required for the azure-openai reasoner")
		}
	default:
		add("reasoner.kind", fmt.Sprintf("unknown reasoner kind %q", cfg.Reasoner.Kind),
			fmt.Sprintf("use %q or %q", ReasonerDirective, ReasonerAzureOpenAI))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}
