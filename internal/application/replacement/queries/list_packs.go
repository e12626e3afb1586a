package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
)

// ListPacksQuery lists the registered replacement packs
type ListPacksQuery struct{}

// PackSummary describes one pack and its status flags
type PackSummary struct {
	Name         string
	Records      int
	Applied      bool
	Conflicts    bool
	NotAllLoaded bool
}

// ListPacksResponse represents the registered packs
type ListPacksResponse struct {
	Packs []PackSummary
}

// ListPacksHandler handles the ListPacks query
type ListPacksHandler struct {
	engine *engine.Engine
}

// NewListPacksHandler creates a new ListPacksHandler
func NewListPacksHandler(e *engine.Engine) *ListPacksHandler {
	return &ListPacksHandler{engine: e}
}

// Handle executes the ListPacks query
func (h *ListPacksHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListPacksQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPacksQuery")
	}

	response := &ListPacksResponse{}
	for _, p := range h.engine.PackLibrary().Packs() {
		response.Packs = append(response.Packs, PackSummary{
			Name:         p.Name,
			Records:      len(p.Records),
			Applied:      h.engine.PackApplied(p.Name),
			Conflicts:    h.engine.Conflicts(p.Name),
			NotAllLoaded: h.engine.PackNotAllLoaded(p.Name),
		})
	}
	return response, nil
}
