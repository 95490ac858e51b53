package api

import (
	"context"
	"net/http"

	"github.com/Preethi0409/canvas/internal/wire"
)

// The Client doubles as the engine's durable store (engine.Store).

// Append persists a finished stroke and returns the confirmed operation with
// its server-assigned id and timestamp.
func (c *Client) Append(ctx context.Context, canvasID string, draft wire.OperationDraft) (*wire.Operation, error) {
	out := &wire.Operation{}
	if err := c.do(ctx, http.MethodPost, "/api/canvases/"+canvasID+"/operations", draft, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadAll returns the full operation snapshot, ordered by creation time.
func (c *Client) LoadAll(ctx context.Context, canvasID string) ([]wire.Operation, error) {
	var out []wire.Operation
	if err := c.do(ctx, http.MethodGet, "/api/canvases/"+canvasID+"/operations", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAll removes every persisted operation of the canvas.
func (c *Client) DeleteAll(ctx context.Context, canvasID string) error {
	return c.do(ctx, http.MethodDelete, "/api/canvases/"+canvasID+"/operations", nil, nil, true)
}
