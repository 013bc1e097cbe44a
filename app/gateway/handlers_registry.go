package gateway

import (
	"errors"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

func (a *App) listChains(ctx *Context) handler.Response {
	ids, err := a.registry.Chains(ctx)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(map[string]any{
		"chains": ids,
		"count":  len(ids),
	})
}

func (a *App) getChain(ctx *Context) handler.Response {
	id := ctx.Param("id")
	if id == "" {
		return response.Error(response.ErrBadRequest.WithMessage("Chain ID required"))
	}
	info, err := a.registry.Chain(ctx, id)
	if errors.Is(err, ErrChainNotFound) {
		return response.Error(response.ErrNotFound.WithMessage("Chain not found"))
	}
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(info)
}
