package mcpclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/tjmaxx/jevehome-agent/agent"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// Manager owns provider connections and keeps the agent registry in sync
// with what is connected.
type Manager struct {
	mu       sync.Mutex
	registry *agent.Registry
	clients  map[string]*Client
	log      logger.Logger
}

// NewManager creates a manager updating the given registry.
func NewManager(registry *agent.Registry, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Manager{
		registry: registry,
		clients:  make(map[string]*Client),
		log:      log,
	}
}

// Connect establishes a provider connection, discovers its tools, and
// registers them. Connecting an already connected provider reconnects it.
func (m *Manager) Connect(ctx context.Context, config ServerConfig) error {
	client, err := NewClient(config, m.log)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		_ = client.Close()
		return err
	}
	if len(tools) == 0 {
		m.log.Warn("provider exposes no tools", logger.String("provider", config.Name))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if previous, ok := m.clients[config.Name]; ok {
		m.registry.UnregisterProvider(config.Name)
		_ = previous.Close()
	}
	m.clients[config.Name] = client
	m.registry.RegisterProvider(config.Name, &callerAdapter{client: client}, DescriptorsFromTools(tools))
	return nil
}

// Disconnect closes a provider connection and removes its tools.
func (m *Manager) Disconnect(providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[providerID]
	if !ok {
		return fmt.Errorf("provider %s not connected", providerID)
	}
	delete(m.clients, providerID)
	m.registry.UnregisterProvider(providerID)
	return client.Close()
}

// Connected returns the IDs of connected providers.
func (m *Manager) Connected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.clients))
	for name := range m.clients {
		out = append(out, name)
	}
	return out
}

// CloseAll disconnects every provider. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, client := range m.clients {
		m.registry.UnregisterProvider(name)
		if err := client.Close(); err != nil {
			m.log.Warn("error closing provider", logger.String("provider", name), logger.Err(err))
		}
	}
	m.clients = make(map[string]*Client)
}

// callerAdapter exposes a Client through the registry's provider-caller
// boundary.
type callerAdapter struct {
	client *Client
}

func (c *callerAdapter) CallTool(ctx context.Context, name string, args map[string]any) (*agent.ExternalResult, error) {
	result, err := c.client.CallTool(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return &agent.ExternalResult{
		IsError: result.IsError,
		Text:    ContentText(result),
	}, nil
}
