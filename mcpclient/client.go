package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tjmaxx/jevehome-agent/logger"
)

const protocolVersion = "2024-11-05"

// Client wraps one MCP connection.
type Client struct {
	config ServerConfig
	mcp    *client.Client
	log    logger.Logger
}

// NewClient creates an unconnected client for the given provider config.
func NewClient(config ServerConfig, log logger.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Client{
		config: config,
		log:    log.With(logger.String("provider", config.Name)),
	}, nil
}

// Connect establishes the transport and initializes the MCP session.
func (c *Client) Connect(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, c.config.connectTimeout())
	defer cancel()

	var mcpClient *client.Client
	var err error

	switch c.config.GetProtocol() {
	case ProtocolSSE:
		var options []transport.ClientOption
		if len(c.config.Headers) > 0 {
			options = append(options, transport.WithHeaders(c.config.Headers))
		}
		sseTransport, terr := transport.NewSSE(c.config.URL, options...)
		if terr != nil {
			return fmt.Errorf("create sse transport: %w", terr)
		}
		mcpClient = client.NewClient(sseTransport)
		err = mcpClient.Start(connectCtx)

	case ProtocolHTTP:
		var options []transport.StreamableHTTPCOption
		if len(c.config.Headers) > 0 {
			options = append(options, transport.WithHTTPHeaders(c.config.Headers))
		}
		httpTransport, terr := transport.NewStreamableHTTP(c.config.URL, options...)
		if terr != nil {
			return fmt.Errorf("create http transport: %w", terr)
		}
		mcpClient = client.NewClient(httpTransport)
		err = mcpClient.Start(connectCtx)

	default:
		env := make([]string, 0, len(c.config.Env))
		for key, value := range c.config.Env {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		mcpClient, err = client.NewStdioMCPClient(c.config.Command, env, c.config.Args...)
	}
	if err != nil {
		return fmt.Errorf("connect to provider %s: %w", c.config.Name, err)
	}

	_, err = mcpClient.Initialize(connectCtx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "jevehome-agent",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("initialize provider %s: %w", c.config.Name, err)
	}

	c.mcp = mcpClient
	c.log.Info("provider connected", logger.String("protocol", string(c.config.GetProtocol())))
	return nil
}

// ListTools fetches the provider's tool descriptors.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if c.mcp == nil {
		return nil, fmt.Errorf("provider %s not connected", c.config.Name)
	}
	result, err := c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools on %s: %w", c.config.Name, err)
	}
	return result.Tools, nil
}

// CallTool invokes one tool by its raw name.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	if c.mcp == nil {
		return nil, fmt.Errorf("provider %s not connected", c.config.Name)
	}
	result, err := c.mcp.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: arguments,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("call tool %s on %s: %w", name, c.config.Name, err)
	}
	return result, nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	if c.mcp == nil {
		return nil
	}
	err := c.mcp.Close()
	c.mcp = nil
	return err
}

// ContentText flattens a call result's content parts into one string.
// Text parts that are themselves JSON in the {"type":"text","text":...}
// convention are unwrapped.
func ContentText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case *mcp.TextContent:
			parts = append(parts, unwrapTextJSON(c.Text))
		case mcp.TextContent:
			parts = append(parts, unwrapTextJSON(c.Text))
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", c.MIMEType))
		case mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", c.MIMEType))
		default:
			if raw, err := json.Marshal(content); err == nil {
				parts = append(parts, string(raw))
			}
		}
	}
	return strings.Join(parts, "\n")
}

func unwrapTextJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return text
	}
	var wrapper struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return text
	}
	if wrapper.Type == "text" && wrapper.Text != "" {
		return wrapper.Text
	}
	return text
}
