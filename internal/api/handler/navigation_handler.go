package handler

import (
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"net/http"
)

type Route struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type NavigationResponse struct {
	InitialRoute string  `json:"initial_route"`
	Routes       []Route `json:"routes"`
}

type HomeResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// drawerRoutes lists the drawer menu entries; neither takes parameters.
var drawerRoutes = []Route{
	{Name: "Home", Title: "Home", Path: "/navigation/home"},
	{Name: "List Customers", Title: "Customers", Path: "/customers/sessions"},
}

type NavigationHandler struct {
	logger *logger.Logger
}

func NewNavigationHandler(logger *logger.Logger) *NavigationHandler {
	return &NavigationHandler{logger: logger.Component("handler/navigation")}
}

func (h *NavigationHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/home", h.Home)

	return r
}

func (h *NavigationHandler) List(w http.ResponseWriter, r *http.Request) {
	routes := make([]Route, len(drawerRoutes))
	copy(routes, drawerRoutes)

	writeJSON(w, http.StatusOK, NavigationResponse{
		InitialRoute: drawerRoutes[0].Name,
		Routes:       routes,
	}, h.logger)
}

func (h *NavigationHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HomeResponse{Title: "Home", Text: "Empty Screen"}, h.logger)
}
