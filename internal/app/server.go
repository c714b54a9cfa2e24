package app

import (
	"log"
	"net/http"
	"time"

	"chatsphere/backend/internal/handler"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	router *mux.Router
}

func NewServer(userHandler *handler.UserHandler, chatHandler *handler.ChatHandler, messageHandler *handler.MessageHandler) *Server {
	router := mux.NewRouter()

	// Routes
	userHandler.RegisterRoutes(router)
	chatHandler.RegisterRoutes(router)
	messageHandler.RegisterRoutes(router)

	router.HandleFunc("/ping", handler.Ping).Methods("GET", "OPTIONS")

	swaggerHandler := httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)

	router.PathPrefix("/swagger/").Handler(swaggerHandler)

	return &Server{router: router}
}

func (s *Server) Run(port string) {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)

	srv := &http.Server{
		Handler:      cors(s.router),
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(srv.ListenAndServe())
}
