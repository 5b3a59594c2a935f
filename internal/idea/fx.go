package idea

import (
	"github.com/hintboard/hintboard/internal/idea/repository"
	"github.com/hintboard/hintboard/internal/idea/service"
	"go.uber.org/fx"
)

var Module = fx.Module("idea.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
