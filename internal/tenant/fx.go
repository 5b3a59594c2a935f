package tenant

import (
	"github.com/hintboard/hintboard/internal/config"
	orgdomain "github.com/hintboard/hintboard/internal/organization/domain"
	subdomain "github.com/hintboard/hintboard/internal/subscription/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant",
	fx.Provide(NewResolver),
	fx.Provide(NewIdentity),
	fx.Provide(provideDirectory),
	fx.Provide(provideBilling),
	fx.Provide(NewGate),
)

func provideDirectory(cfg config.Config, orgs orgdomain.Service) Directory {
	return NewCachedDirectory(directoryAdapter{orgs}, cfg.TenantCacheTTL)
}

func provideBilling(subs subdomain.Service) Billing {
	return subs
}

// directoryAdapter narrows the organization service to the gate's surface.
type directoryAdapter struct {
	orgdomain.Service
}
