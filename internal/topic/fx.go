package topic

import (
	"github.com/hintboard/hintboard/internal/topic/repository"
	"github.com/hintboard/hintboard/internal/topic/service"
	"go.uber.org/fx"
)

var Module = fx.Module("topic.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
