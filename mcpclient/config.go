// Package mcpclient connects to external tool providers speaking the MCP
// protocol and adapts their tools for the agent's registry.
package mcpclient

import (
	"fmt"
	"strings"
	"time"
)

// ProtocolType selects the provider transport.
type ProtocolType string

const (
	ProtocolStdio ProtocolType = "stdio"
	ProtocolSSE   ProtocolType = "sse"
	ProtocolHTTP  ProtocolType = "http"
)

// DefaultConnectTimeout bounds provider connection and initialization.
const DefaultConnectTimeout = 30 * time.Second

// ServerConfig describes one external tool provider.
type ServerConfig struct {
	// Name becomes the provider ID used for tool namespacing.
	Name     string       `json:"name" mapstructure:"name"`
	Protocol ProtocolType `json:"protocol" mapstructure:"protocol"`

	// Stdio transport.
	Command string            `json:"command,omitempty" mapstructure:"command"`
	Args    []string          `json:"args,omitempty" mapstructure:"args"`
	Env     map[string]string `json:"env,omitempty" mapstructure:"env"`

	// SSE/HTTP transport.
	URL     string            `json:"url,omitempty" mapstructure:"url"`
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"`

	ConnectTimeout time.Duration `json:"connect_timeout,omitempty" mapstructure:"connect_timeout"`
}

// Validate checks the configuration for the chosen protocol.
func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("provider name is required")
	}
	switch c.GetProtocol() {
	case ProtocolStdio:
		if c.Command == "" {
			return fmt.Errorf("provider %s: stdio transport requires a command", c.Name)
		}
	case ProtocolSSE, ProtocolHTTP:
		if c.URL == "" {
			return fmt.Errorf("provider %s: %s transport requires a url", c.Name, c.GetProtocol())
		}
	default:
		return fmt.Errorf("provider %s: unknown protocol %q", c.Name, c.Protocol)
	}
	return nil
}

// GetProtocol returns the configured protocol, inferring stdio/http from the
// populated fields when absent.
func (c ServerConfig) GetProtocol() ProtocolType {
	if c.Protocol != "" {
		return c.Protocol
	}
	if c.URL != "" {
		return ProtocolHTTP
	}
	return ProtocolStdio
}

func (c ServerConfig) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return DefaultConnectTimeout
}
