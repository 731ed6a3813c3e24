// Package mcp exposes glport's backend probing to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glport/internal/config"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

const (
	ServerName    = "glport"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for glport diagnostics.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	logger    *slog.Logger

	// mu serializes probes; each one loads and unloads native libraries.
	mu sync.Mutex

	// Probe hooks (primarily for tests).
	runFn   func(probe.Request) probe.Report
	firstFn func(order []platform.Kind, opts platform.Options, display string) (platform.Kind, error)
}

// NewServer creates an MCP server that probes with cfg as the baseline
// request.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		config:  cfg,
		logger:  logger.With("component", "mcp"),
		runFn:   probe.Run,
		firstFn: probe.FirstAvailable,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_platforms",
		Description: "List the GPU context backends glport knows, whether each is linked into this binary, and the order used when the platform is auto.",
	}, s.handleListPlatforms)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "probe_platform",
		Description: "Create a platform, connect a display, choose a config and create a context (plus a window when requested), make it current, then tear everything down. Reports every step with its error code and message, and what the display supports.",
	}, s.handleProbePlatform)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "error_codes",
		Description: "List glport error codes and their names.",
	}, s.handleErrorCodes)
}
