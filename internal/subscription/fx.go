package subscription

import (
	"github.com/hintboard/hintboard/internal/subscription/repository"
	"github.com/hintboard/hintboard/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
