package router

import (
	appuser "github.com/iwa-store/user-service/internal/application"
	"github.com/iwa-store/user-service/internal/container"
	repouser "github.com/iwa-store/user-service/internal/domain/repository"
	pginfra "github.com/iwa-store/user-service/internal/infrastructure/postgres"
	"github.com/iwa-store/user-service/internal/interface/events"
	handlers "github.com/iwa-store/user-service/internal/interface/http"
	"github.com/iwa-store/user-service/internal/router/modules"
)

type UserModuleDeps struct {
	Repo       repouser.UserRepository
	Service    *appuser.Service
	Dispatcher *events.Dispatcher
	Handler    *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := appuser.NewService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)

	dispatcher := events.NewDispatcher(service, container.GetLogger())

	handler := handlers.NewUserHandler(service, container.GetLogger())

	return UserModuleDeps{
		Repo:       repo,
		Service:    service,
		Dispatcher: dispatcher,
		Handler:    handler,
	}
}

// InitModules initializes all application modules and registers them with the
// router registry. Returns the dispatcher so main can hand it to the AMQP
// consumer: HTTP app-events and bus deliveries share one dispatch path.
func InitModules(r *Registry) *events.Dispatcher {
	deps := buildUserDeps()
	r.Add(modules.New(deps.Handler, container.GetJWT()))
	r.Add(modules.NewEventsModule(handlers.NewEventsHandler(deps.Dispatcher, container.GetLogger())))
	r.Add(modules.NewDebugModule())
	return deps.Dispatcher
}
