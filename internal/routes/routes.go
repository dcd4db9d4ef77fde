package routes

import (
	"net/http"

	"CapIot.dashboard/internal/controller"
	"CapIot.dashboard/internal/middleware"
	"CapIot.dashboard/internal/models"
	"CapIot.dashboard/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// Options configures the router.
type Options struct {
	Chat      http.Handler
	PublicDir string
	Logger    *log.Logger
}

// SetupRouter registers all application routes.
func SetupRouter(c *controller.DashboardController, opts Options) *mux.Router {
	router := mux.NewRouter()
	if opts.Logger != nil {
		router.Use(middleware.Recover(opts.Logger), middleware.Logging(opts.Logger))
	}

	router.HandleFunc("/", c.HandleIndex).Methods(http.MethodGet)
	router.HandleFunc("/health", c.HandleHealth).Methods(http.MethodGet)

	SetupAPIRoutes(router.PathPrefix("/api").Subrouter(), c)

	if opts.Chat != nil {
		router.Handle("/ws/chat", opts.Chat).Methods(http.MethodGet)
	}
	if opts.PublicDir != "" {
		router.PathPrefix("/public/").Handler(
			http.StripPrefix("/public/", http.FileServer(http.Dir(opts.PublicDir))),
		).Methods(http.MethodGet, http.MethodHead)
	}

	setFallbacks(router)

	return router
}

// setFallbacks installs the JSON 404/405 handlers. Subrouters do not inherit
// them from their parent.
func setFallbacks(router *mux.Router) {
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, "Not found", r.URL.Path, http.StatusNotFound))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "Method not allowed", r.Method, http.StatusMethodNotAllowed))
}

// SetupAPIRoutes registers the JSON endpoints under /api.
func SetupAPIRoutes(router *mux.Router, c *controller.DashboardController) {
	router.HandleFunc("/devices", c.HandleDevices).Methods(http.MethodGet)
	router.HandleFunc("/snapshot", c.HandleSnapshot).Methods(http.MethodGet)
	router.HandleFunc("/occupancy", c.HandleOccupancy).Methods(http.MethodGet)
	router.HandleFunc("/heatmap", c.HandleHeatmap).Methods(http.MethodPost, http.MethodGet)
	setFallbacks(router)
}
