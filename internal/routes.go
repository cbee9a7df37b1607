package internal

import (
	"net/http"

	"github.com/lockedloop/tempus-fugit/internal/controllers"
	"github.com/lockedloop/tempus-fugit/internal/providers"
	"github.com/lockedloop/tempus-fugit/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/containers", http.HandlerFunc(apiController.GetContainers))
	routers.Post("/containers/add", http.HandlerFunc(apiController.CreateContainer))
	routers.Post("/containers/update", http.HandlerFunc(apiController.UpdateContainer))
	routers.Delete("/containers/delete", http.HandlerFunc(apiController.DeleteContainer))
	routers.Post("/containers/height", http.HandlerFunc(apiController.AdjustHeight))
	routers.Post("/containers/todos", http.HandlerFunc(apiController.UpdateTodos))
	routers.Post("/containers/fullscreen", http.HandlerFunc(apiController.SetFullscreen))
	routers.Post("/reorder", http.HandlerFunc(apiController.Reorder))
	routers.Get("/settings", http.HandlerFunc(apiController.GetSettings))
	routers.Post("/settings/update", http.HandlerFunc(apiController.UpdateSettings))
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Post("/import", http.HandlerFunc(apiController.Import))
	routers.Get("/clock", http.HandlerFunc(apiController.GetClock))
	return routers
}
