package organization

import (
	"github.com/hintboard/hintboard/internal/organization/repository"
	"github.com/hintboard/hintboard/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
