package dataflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const DefaultDockerMCPTimeout = 60 * time.Second

// DockerMCPClient runs Exa searches through the Docker MCP toolkit CLI.
type DockerMCPClient struct {
	binary  string
	timeout time.Duration
	// run executes the command and returns stdout, stderr and the error.
	run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

type DockerOption func(*DockerMCPClient)

func WithDockerBinary(binary string) DockerOption {
	return func(c *DockerMCPClient) {
		if binary != "" {
			c.binary = binary
		}
	}
}

func WithDockerTimeout(timeout time.Duration) DockerOption {
	return func(c *DockerMCPClient) {
		c.timeout = timeout
	}
}

func NewDockerMCPClient(opts ...DockerOption) *DockerMCPClient {
	c := &DockerMCPClient{
		binary:  "docker",
		timeout: DefaultDockerMCPTimeout,
		run:     runCommand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (c *DockerMCPClient) Name() string { return BackendDockerMCP }

// Search runs the bridge. The bridge takes no domain or date parameters, so
// the domain filter is folded into the query text.
func (c *DockerMCPClient) Search(ctx context.Context, req SearchRequest) ([]Article, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := PriorityQuery(req.Query, req.IncludeDomains)
	stdout, stderr, err := c.run(ctx, c.binary, "mcp", "tools", "call", "web_search_exa", "query="+query)
	if err != nil {
		return nil, c.classify(ctx, err, stdout, stderr)
	}

	payload, err := ParseBridgeOutput(stdout)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: err.Error(), Cause: err}
	}
	return NormalizeResults(payload), nil
}

func (c *DockerMCPClient) classify(ctx context.Context, err error, stdout, stderr []byte) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ProviderError{Provider: c.Name(), Message: "DockerMCP Exa search timed out.", Cause: err}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return &ProviderError{
			Provider: c.Name(),
			Message:  "Docker CLI not found. Install Docker Desktop to use DockerMCP Exa fallback.",
			Cause:    err,
		}
	}
	message := strings.TrimSpace(string(stderr))
	if message == "" {
		message = strings.TrimSpace(string(stdout))
	}
	if message == "" {
		message = "unknown error"
	}
	return &ProviderError{Provider: c.Name(), Message: fmt.Sprintf("DockerMCP Exa search failed: %s", message), Cause: err}
}

// ParseBridgeOutput decodes the JSON object in bridge stdout. The CLI
// prefixes its output with timing text, so parsing starts at the first "{".
func ParseBridgeOutput(stdout []byte) (map[string]any, error) {
	start := bytes.IndexByte(stdout, '{')
	if start == -1 {
		return nil, errors.New("Could not parse DockerMCP tool output as JSON.")
	}
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(stdout[start:]))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("Could not parse DockerMCP tool output as JSON: %w", err)
	}
	return payload, nil
}
