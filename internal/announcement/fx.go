package announcement

import (
	"github.com/hintboard/hintboard/internal/announcement/repository"
	"github.com/hintboard/hintboard/internal/announcement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("announcement.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
