package loadaudit

import (
	"github.com/smallbiznis/reviewvault/internal/loadaudit/repository"
	"github.com/smallbiznis/reviewvault/internal/loadaudit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("loadaudit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
