package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxxscope/internal/session"
	"github.com/mvp-joe/cxxscope/internal/watcher"
)

// StatusSource describes the loaded session.
type StatusSource interface {
	ID() string
	RootDir() string
	Inputs() []string
	Stats() session.Stats
	LoadedAt() time.Time
}

// StatusResponse is the cxx_status result.
type StatusResponse struct {
	SessionID        string                   `json:"session_id"`
	RootDir          string                   `json:"root_dir"`
	Inputs           []string                 `json:"inputs"`
	LoadedAt         time.Time                `json:"loaded_at"`
	Declarations     int                      `json:"declarations"`
	CommentsAttached int                      `json:"comments_attached"`
	Generated        int                      `json:"generated"`
	CacheHits        int                      `json:"cache_hits"`
	LoadMs           int64                    `json:"load_ms"`
	Reloads          *watcher.MetricsSnapshot `json:"reloads,omitempty"`
}

// AddStatusTool registers the cxx_status tool. metrics is nil when the server
// does not watch headers.
func AddStatusTool(s *server.MCPServer, src StatusSource, metrics *watcher.ReloadMetrics) {
	tool := mcp.NewTool(
		"cxx_status",
		mcp.WithDescription("Report what is loaded: inputs, declaration and comment counts, when the tree was built, and reload statistics when headers are watched."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createStatusHandler(src, metrics))
}

func createStatusHandler(src StatusSource, metrics *watcher.ReloadMetrics) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := src.Stats()
		resp := StatusResponse{
			SessionID:        src.ID(),
			RootDir:          src.RootDir(),
			Inputs:           src.Inputs(),
			LoadedAt:         src.LoadedAt(),
			Declarations:     stats.Declarations,
			CommentsAttached: stats.Attached,
			Generated:        stats.Generated,
			CacheHits:        stats.CacheHits,
			LoadMs:           stats.Duration.Milliseconds(),
		}
		if metrics != nil {
			snap := metrics.Snapshot()
			resp.Reloads = &snap
		}
		return jsonResult(resp)
	}
}
