package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/u13-football/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/u13-football/handlers"
	"github.com/Dosada05/u13-football/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const requestTimeout = 30 * time.Second

type Handlers struct {
	Auth            *handlers.AuthHandler
	User            *handlers.UserHandler
	Club            *handlers.ClubHandler
	Team            *handlers.TeamHandler
	Player          *handlers.PlayerHandler
	Tournament      *handlers.TournamentHandler
	Group           *handlers.GroupHandler
	Registration    *handlers.RegistrationHandler
	TournamentMatch *handlers.TournamentMatchHandler
	Match           *handlers.MatchHandler
	MatchDetail     *handlers.MatchDetailHandler
}

func SetupRoutes(router chi.Router, h Handlers, auth *middleware.Authenticator, allowedOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(requestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Публичные маршруты
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})
	router.Get("/tournaments/open", h.Tournament.ListOpenTournaments)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.User.GetMe)
			r.Patch("/", h.User.UpdateMe)
			r.Post("/password", h.User.ChangePassword)
			r.Patch("/notifications", h.User.UpdateNotifications)
			r.Post("/avatar", h.User.UploadAvatar)
		})

		r.Get("/my-clubs", h.Club.ListMyClubs)
		r.Get("/my-teams", h.Team.ListMyTeams)
		r.Get("/my-players", h.Player.ListMyPlayers)

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.Club.ListClubs)
			r.Post("/", h.Club.CreateClub)
			r.Route("/{clubID}", func(r chi.Router) {
				r.Get("/", h.Club.GetClub)
				r.Patch("/", h.Club.UpdateClub)
				r.Delete("/", h.Club.DeleteClub)
				r.Post("/logo", h.Club.UploadLogo)
				r.Get("/teams", h.Team.ListClubTeams)
				r.Post("/teams", h.Team.CreateTeam)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.GetTeam)
				r.Patch("/", h.Team.UpdateTeam)
				r.Delete("/", h.Team.DeleteTeam)
				r.Post("/follow", h.Team.Follow)
				r.Delete("/follow", h.Team.Unfollow)
				r.Get("/players", h.Player.ListTeamPlayers)
				r.Post("/players", h.Player.CreatePlayer)
				r.Get("/players/main", h.Player.ListMainPlayers)
				r.Get("/players/substitutes", h.Player.ListSubstitutes)
				r.Get("/matches", h.Match.TeamSchedule)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", h.Player.GetPlayer)
				r.Patch("/", h.Player.UpdatePlayer)
				r.Delete("/", h.Player.DeletePlayer)
				r.Post("/set-main", h.Player.SetMain)
				r.Post("/remove-main", h.Player.RemoveMain)
				r.Post("/photo", h.Player.UploadPhoto)
				r.Get("/stats", h.Player.GetPlayerStats)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.Post("/", h.Tournament.CreateTournament)
			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetTournament)
				r.Patch("/", h.Tournament.UpdateTournament)
				r.Delete("/", h.Tournament.DeleteTournament)
				r.Post("/logo", h.Tournament.UploadLogo)
				r.Post("/start", h.Tournament.StartTournament)
				r.Post("/finish", h.Tournament.FinishTournament)
				r.Post("/cancel", h.Tournament.CancelTournament)
				r.Get("/teams", h.Tournament.ListTeams)
				r.Get("/standings", h.Tournament.GetStandings)
				r.Get("/stats", h.Tournament.GetStats)
				r.Get("/schedule", h.Match.TournamentSchedule)

				r.Get("/groups", h.Group.ListGroups)
				r.Post("/groups", h.Group.CreateGroup)
				r.Get("/phases", h.Group.ListPhases)
				r.Post("/phases", h.Group.CreatePhase)

				r.Get("/registrations", h.Registration.ListRegistrations)
				r.Post("/registrations", h.Registration.Register)

				r.Get("/matches", h.TournamentMatch.ListTournamentMatches)
				r.Post("/matches", h.TournamentMatch.CreateMatch)
			})
		})

		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/", h.Group.GetGroup)
			r.Patch("/", h.Group.UpdateGroup)
			r.Delete("/", h.Group.DeleteGroup)
			r.Get("/teams", h.Group.ListMembers)
			r.Post("/teams", h.Group.AddTeam)
			r.Delete("/teams/{teamID}", h.Group.RemoveTeam)
			r.Get("/standings", h.Group.GetStandings)
			r.Get("/matches", h.TournamentMatch.ListGroupMatches)
			r.Post("/matches", h.TournamentMatch.CreateGroupMatch)
		})

		r.Route("/phases/{phaseID}", func(r chi.Router) {
			r.Patch("/", h.Group.UpdatePhase)
			r.Delete("/", h.Group.DeletePhase)
		})

		r.Route("/registrations/{registrationID}", func(r chi.Router) {
			r.Patch("/", h.Registration.ReviewRegistration)
			r.Post("/withdraw", h.Registration.WithdrawRegistration)
		})

		r.Route("/tournament-matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.TournamentMatch.GetMatch)
			r.Patch("/", h.TournamentMatch.UpdateMatch)
			r.Delete("/", h.TournamentMatch.DeleteMatch)
			r.Post("/score", h.TournamentMatch.UpdateScore)
			r.Post("/start", h.TournamentMatch.StartMatch)
			r.Post("/finish", h.TournamentMatch.FinishMatch)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListMatches)
			r.Post("/", h.Match.CreateMatch)
			r.Get("/live", h.Match.ListLive)
			r.Get("/upcoming", h.Match.ListUpcoming)
			r.Get("/recent", h.Match.ListRecent)
			r.Get("/search", h.Match.Search)

			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", h.Match.GetMatch)
				r.Patch("/", h.Match.UpdateMatch)
				r.Delete("/", h.Match.DeleteMatch)
				r.Post("/start", h.Match.StartMatch)
				r.Post("/finish", h.Match.FinishMatch)
				r.Post("/postpone", h.Match.PostponeMatch)
				r.Post("/cancel", h.Match.CancelMatch)
				r.Post("/reschedule", h.Match.RescheduleMatch)

				r.Get("/events", h.MatchDetail.ListEvents)
				r.Post("/events", h.MatchDetail.CreateEvent)
				r.Patch("/events/{eventID}", h.MatchDetail.UpdateEvent)
				r.Delete("/events/{eventID}", h.MatchDetail.DeleteEvent)

				r.Get("/lineups", h.MatchDetail.ListLineups)
				r.Post("/lineups", h.MatchDetail.CreateLineup)
				r.Patch("/lineups/{lineupID}", h.MatchDetail.UpdateLineupStats)
				r.Delete("/lineups/{lineupID}", h.MatchDetail.DeleteLineup)
				r.Post("/set-lineup", h.MatchDetail.SetLineup)
				r.Post("/player-stats", h.MatchDetail.BulkPlayerStats)

				r.Get("/stats", h.MatchDetail.ListStatistics)
				r.Put("/stats", h.MatchDetail.SaveStatistics)

				r.Get("/report", h.MatchDetail.GetReport)
				r.Put("/report", h.MatchDetail.SaveReport)
				r.Post("/report/validate", h.MatchDetail.ValidateReport)
			})
		})
	})
}
