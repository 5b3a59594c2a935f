package auth

import (
	"github.com/hintboard/hintboard/internal/auth/repository"
	"github.com/hintboard/hintboard/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
