package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"formalyze/internal/config"
	"formalyze/internal/service"
	"formalyze/internal/transport/rest/handler"
	"formalyze/internal/transport/rest/middleware"
	"formalyze/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	SurveyService   *service.SurveyService
	ResponseService *service.ResponseService
	ResultsService  *service.ResultsService
	AgentService    *service.AgentService
	WSHub           *ws.Hub
	CORS            config.CORSConfig
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	responseHandler := handler.NewResponseHandler(c.SurveyService, c.ResponseService, c.ResultsService)
	agentHandler := handler.NewAgentHandler(c.AgentService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SurveyService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/public/surveys/{surveyId}", responseHandler.PublicSurvey).Methods("GET", "OPTIONS")
	v1.HandleFunc("/public/surveys/{surveyId}/responses", responseHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}", wsHandler.SurveyWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Owner routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/questions", surveyHandler.AppendQuestions).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/activate", surveyHandler.Activate).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/deactivate", surveyHandler.Deactivate).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/responses", responseHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/results", responseHandler.Results).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/normalize", surveyHandler.Normalize).Methods("POST", "OPTIONS")

	// Authoring agent
	userRoutes.HandleFunc("/agent/sessions", agentHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/agent/sessions/{sessionId}/messages", agentHandler.Message).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/agent/sessions/{sessionId}/questions", agentHandler.Questions).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/agent/sessions/{sessionId}/finalize", agentHandler.Finalize).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	origins := splitList(orDefault(cfg.AllowedOrigins, "*"))
	allowAny := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", orDefault(cfg.AllowedMethods, "GET, POST, PUT, DELETE, OPTIONS"))
			w.Header().Set("Access-Control-Allow-Headers", orDefault(cfg.AllowedHeaders, "Content-Type, Authorization"))

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
