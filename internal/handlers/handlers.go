package handlers

import (
	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/database"
	"github.com/promline/shift-task-service/internal/handlers/public"
	"github.com/promline/shift-task-service/internal/service"
)

// Handlers содержит все HTTP обработчики
type Handlers struct {
	Health  *HealthHandler
	Task    *public.TaskHandler
	Product *public.ProductHandler
}

// HandlerDependencies содержит зависимости для создания handlers
type HandlerDependencies struct {
	Service *service.Service
	DB      *database.DB
	Redis   *database.RedisClient
	Logger  *zap.Logger
}

// NewHandlers создает новый экземпляр Handlers со всеми обработчиками
func NewHandlers(deps *HandlerDependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.DB, deps.Redis),
		Task:    public.NewTaskHandler(deps.Service.Task, deps.Logger),
		Product: public.NewProductHandler(deps.Service.Product, deps.Logger),
	}
}
