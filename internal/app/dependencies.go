package app

import (
	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/hub"
	"github.com/nfrund/zina/internal/modules/account"
	"github.com/nfrund/zina/internal/modules/storefront"
	"github.com/nfrund/zina/internal/promo"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/rendering"
	"github.com/nfrund/zina/internal/search"
)

// Dependencies holds the core services required by the application's modules.
// The server builds it once and passes it to NewModules.
type Dependencies struct {
	API        *apiclient.Client
	Cache      cache.Store
	Promo      *promo.Engine
	Rewriter   search.Rewriter
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Hub        *hub.Hub
	Renderer   rendering.Renderer
	Origins    []string
}

func storefrontDeps(deps Dependencies) storefront.Dependencies {
	return storefront.Dependencies{
		API:       deps.API,
		Cache:     deps.Cache,
		Promo:     deps.Promo,
		Rewriter:  deps.Rewriter,
		Publisher: deps.Publisher,
	}
}

func accountDeps(deps Dependencies) account.Dependencies {
	return account.Dependencies{
		API:        deps.API,
		Publisher:  deps.Publisher,
		Subscriber: deps.Subscriber,
		Hub:        deps.Hub,
		Renderer:   deps.Renderer,
		Origins:    deps.Origins,
	}
}
