package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const greetingScheme = "greeting://"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: greetingScheme + "{name}",
		Name:        "greeting",
		Description: "Get a personalized greeting",
		MIMEType:    "text/plain",
	}, s.handleGreeting)
}

func (s *Server) handleGreeting(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	name := greetingName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     greeting(name),
		}},
	}, nil
}

func greeting(name string) string {
	return fmt.Sprintf("Hello, %s! I am your HR Leave Management Assistant. How can I help you today?", name)
}

func greetingName(uri string) string {
	name, ok := strings.CutPrefix(uri, greetingScheme)
	if !ok || strings.Contains(name, "/") {
		return ""
	}
	return strings.TrimSpace(name)
}
