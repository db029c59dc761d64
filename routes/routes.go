package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/niffitek/icke-scores/handlers"
	"github.com/niffitek/icke-scores/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Cup        *handlers.CupHandler
	Team       *handlers.TeamHandler
	Group      *handlers.GroupHandler
	Match      *handlers.MatchHandler
	Standings  *handlers.StandingsHandler
	Transition *handlers.TransitionHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes mounts the public read endpoints and the admin-only mutating
// endpoints. Everything under the authenticated group requires a valid
// admin token.
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret []byte) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	router.Route("/cups", func(r chi.Router) {
		r.Get("/", h.Cup.List)
		r.Get("/active", h.Cup.GetActive)
		r.Get("/{cupID}", h.Cup.Get)
		r.Get("/{cupID}/teams", h.Team.ListByCup)
		r.Get("/{cupID}/groups", h.Group.ListByCup)
		r.Get("/{cupID}/matches", h.Match.ListByCup)
		r.Get("/{cupID}/standings", h.Standings.GetByCup)
		r.Get("/{cupID}/ws", h.WebSocket.ServeWs)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireAdmin)

			r.Post("/", h.Cup.Create)
			r.Put("/{cupID}", h.Cup.Update)
			r.Delete("/{cupID}", h.Cup.Delete)

			r.Post("/{cupID}/teams", h.Team.Create)
			r.Post("/{cupID}/groups", h.Group.Create)

			r.Post("/{cupID}/start-qualifying", h.Transition.StartQualifying)
			r.Post("/{cupID}/start-finals", h.Transition.StartFinals)
			r.Post("/{cupID}/close", h.Transition.CloseCup)
		})
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireAdmin)

		r.Put("/", h.Team.Update)
		r.Delete("/", h.Team.Delete)
		r.Post("/logo", h.Team.UploadLogo)
	})

	router.Route("/groups/{groupID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireAdmin)

		r.Post("/teams", h.Group.AssignTeam)
		r.Delete("/teams/{teamID}", h.Group.RemoveTeam)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireAdmin)

		r.Put("/score", h.Match.UpdateScore)
	})
}
