package app

import (
	"github.com/nfrund/zina/internal/module"
	"github.com/nfrund/zina/internal/modules/account"
	"github.com/nfrund/zina/internal/modules/storefront"
)

// NewModules returns every enabled module. This is the single source of truth
// for which features the storefront serves.
func NewModules(deps Dependencies) []module.Module {
	return []module.Module{
		storefront.New(storefrontDeps(deps)),
		account.New(accountDeps(deps)),
	}
}
