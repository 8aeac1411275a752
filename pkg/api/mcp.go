package api

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Val0905/INEA/pkg/engine"
	"github.com/Val0905/INEA/pkg/kit"
)

// RegisterMCPTools registers the query tools on the MCP server. The tools
// dispatch to the same endpoints the HTTP routes use.
func RegisterMCPTools(srv *server.MCPServer, reg *engine.Registry) {
	registerAggregateStatus(srv, reg)
	registerAggregateActives(srv, reg)
	registerFindRecord(srv, reg)
	registerListDatasets(srv, reg)
}

func mcpTransport(ctx context.Context) context.Context {
	return kit.WithTransport(ctx, "mcp_quic")
}

func registerAggregateStatus(srv *server.MCPServer, reg *engine.Registry) {
	tool := mcp.NewTool("aggregate_status",
		mcp.WithDescription("Count certification records by status (issued, delivered, cancelled) and by year of elaboration, issue and delivery, optionally filtered by region."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id (e.g. sigasti)")),
		mcp.WithString("region_code", mcp.Description("Region code filter (leading zeros ignored)")),
		mcp.WithString("region_name", mcp.Description("Region name filter (accent-insensitive)")),
	)

	kit.RegisterMCPTool(srv, tool, statsEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &statsReq{}
		r.Dataset, _ = args["dataset"].(string)
		r.RegionCode, _ = args["region_code"].(string)
		r.RegionName, _ = args["region_name"].(string)
		return &kit.MCPDecodeResult{Request: r, EnrichCtx: mcpTransport}, nil
	})
}

func registerAggregateActives(srv *server.MCPServer, reg *engine.Registry) {
	tool := mcp.NewTool("aggregate_actives",
		mcp.WithDescription("Count active roster members for a region, broken down by sex."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id (e.g. atnyseg)")),
		mcp.WithString("region_name", mcp.Required(), mcp.Description("Region name (accent-insensitive)")),
	)

	kit.RegisterMCPTool(srv, tool, activesEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &activesReq{}
		r.Dataset, _ = args["dataset"].(string)
		r.RegionName, _ = args["region_name"].(string)
		return &kit.MCPDecodeResult{Request: r, EnrichCtx: mcpTransport}, nil
	})
}

func registerFindRecord(srv *server.MCPServer, reg *engine.Registry) {
	tool := mcp.NewTool("find_record",
		mcp.WithDescription("Look up one record by tax id, optionally narrowed by region, and return its display fields."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("tax_id", mcp.Required(), mcp.Description("Tax id of the record")),
		mcp.WithString("region_code", mcp.Description("Region code filter")),
		mcp.WithString("region_name", mcp.Description("Region name filter")),
	)

	kit.RegisterMCPTool(srv, tool, findEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		r := &findReq{}
		r.Dataset, _ = args["dataset"].(string)
		r.TaxID, _ = args["tax_id"].(string)
		r.RegionCode, _ = args["region_code"].(string)
		r.RegionName, _ = args["region_name"].(string)
		return &kit.MCPDecodeResult{Request: r, EnrichCtx: mcpTransport}, nil
	})
}

func registerListDatasets(srv *server.MCPServer, reg *engine.Registry) {
	tool := mcp.NewTool("list_datasets",
		mcp.WithDescription("List the configured datasets with their manifest metadata."),
	)

	kit.RegisterMCPTool(srv, tool, listDatasetsEndpoint(reg), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil, EnrichCtx: mcpTransport}, nil
	})
}
