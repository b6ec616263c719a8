package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/vibcheck/models"
)

func main() {
	apiURL := os.Getenv("VIBCHECK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("VIBCHECK_API_KEY")

	s := newServer(apiURL, apiKey)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(apiURL, apiKey string) *server.MCPServer {
	s := server.NewMCPServer(
		"vibcheck",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	latestTool := mcp.NewTool("latest_report",
		mcp.WithDescription("Return the inspection report of the most recent vibcheck run against the VIB34D page: which checks passed, the raw counts, and remediation hints."),
	)
	s.AddTool(latestTool, handleLatestReport(apiURL, apiKey))

	getRunTool := mcp.NewTool("get_run",
		mcp.WithDescription("Return the inspection report of a specific vibcheck run by ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Run ID as printed in the vibcheck logs"),
		),
	)
	s.AddTool(getRunTool, handleGetRun(apiURL, apiKey))

	return s
}

func handleLatestReport(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		run, err := fetchRun(ctx, client, apiURL, apiKey, "/api/v1/runs/latest")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatRun(run)), nil
	}
}

func handleGetRun(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil || id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		run, err := fetchRun(ctx, client, apiURL, apiKey, "/api/v1/runs/"+url.PathEscape(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatRun(run)), nil
	}
}

// fetchRun GETs a run from the status API. API errors come back as
// "[CODE] message".
func fetchRun(ctx context.Context, client *http.Client, apiURL, apiKey, path string) (*models.RunResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return nil, fmt.Errorf("[%s] %s", errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var run models.RunResult
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &run, nil
}

func formatRun(run *models.RunResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run: %s\nTarget: %s\nFinished: %s\n", run.ID, run.Target, run.FinishedAt.Format(time.RFC3339))

	if run.Error != nil {
		fmt.Fprintf(&sb, "\nRun failed: [%s] %s\n", run.Error.Code, run.Error.Message)
		return sb.String()
	}

	if run.Verdict != nil {
		v := run.Verdict
		overall := "FAIL"
		if v.Overall {
			overall = "PASS"
		}
		fmt.Fprintf(&sb, "\nOverall: %s\n", overall)
		fmt.Fprintf(&sb, "core=%t ui=%t cards=%t webgl=%t effects=%t\n", v.Core, v.UI, v.Cards, v.WebGL, v.Effects)
	}

	if run.Record != nil {
		sb.WriteString("\nRecord:\n")
		for _, f := range run.Record.Fields() {
			fmt.Fprintf(&sb, "  %s: %v\n", f.Name, f.Value)
		}
	}

	if len(run.Screenshots) > 0 {
		sb.WriteString("\nScreenshots:\n")
		for _, s := range run.Screenshots {
			fmt.Fprintf(&sb, "  %s: %s\n", s.State, s.File)
		}
	}

	if len(run.Remediation) > 0 {
		sb.WriteString("\nRemediation:\n")
		for _, r := range run.Remediation {
			fmt.Fprintf(&sb, "  - %s\n", r)
		}
	}
	return sb.String()
}
