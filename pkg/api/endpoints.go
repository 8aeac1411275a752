package api

import (
	"context"

	"github.com/Val0905/INEA/pkg/engine"
	"github.com/Val0905/INEA/pkg/kit"
)

// Shared request/response types used by both HTTP and MCP transports.

type statsReq struct {
	Dataset    string
	RegionCode string
	RegionName string
}

type activesReq struct {
	Dataset    string
	RegionName string
}

type findReq struct {
	Dataset    string
	TaxID      string
	RegionCode string
	RegionName string
}

// DatasetInfo is the manifest metadata exposed by list operations.
type DatasetInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	FilePrefix string `json:"file_prefix"`
}

type datasetsResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
}

// Endpoints returns the core kit.Endpoints backed by the registry.

func statsEndpoint(reg *engine.Registry) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*statsReq)
		return reg.StatusStats(ctx, req.Dataset, engine.Criteria{
			RegionCode: req.RegionCode,
			RegionName: req.RegionName,
		})
	}
}

func activesEndpoint(reg *engine.Registry) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*activesReq)
		return reg.ActiveStats(ctx, req.Dataset, req.RegionName)
	}
}

func findEndpoint(reg *engine.Registry) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*findReq)
		return reg.Find(ctx, req.Dataset, engine.Criteria{
			TaxID:      req.TaxID,
			RegionCode: req.RegionCode,
			RegionName: req.RegionName,
		})
	}
}

func listDatasetsEndpoint(reg *engine.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		specs := reg.Specs()
		infos := make([]DatasetInfo, len(specs))
		for i, s := range specs {
			infos[i] = DatasetInfo{
				ID:         s.ID,
				Name:       s.Name,
				Kind:       s.Kind,
				FilePrefix: s.FilePrefix,
			}
		}
		return datasetsResponse{Datasets: infos}, nil
	}
}
