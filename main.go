package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/LeylaVieira/merntasks-backend/handlers"
	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/middleware"
	"github.com/LeylaVieira/merntasks-backend/realtime"
	"github.com/LeylaVieira/merntasks-backend/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createUserEmailIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	return err
}

// enableCORS allows the frontend origin configured in the environment.
func enableCORS(next http.Handler) http.Handler {
	frontendURL := os.Getenv("FRONTEND_URL")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && origin == frontendURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting MERN Tasks backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "merntasks_db"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	projectsCollection := db.Collection("projects")
	tasksCollection := db.Collection("tasks")

	if err := createUserEmailIndex(usersCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to create unique index on users.email: %v", err)
	}

	emailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	userService := services.NewUserService(usersCollection, emailBreaker)
	projectService := services.NewProjectService(projectsCollection, tasksCollection, usersCollection)
	taskService := services.NewTaskService(tasksCollection, projectsCollection, usersCollection)

	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	hub := realtime.NewHub()
	realtimeHandler := realtime.NewHandler(hub, projectService)

	r := mux.NewRouter()

	// Account lifecycle, open to unauthenticated clients.
	r.HandleFunc("/api/users", userHandler.Register).Methods("POST")
	r.HandleFunc("/api/users/login", userHandler.Login).Methods("POST")
	r.HandleFunc("/api/users/confirm/{token}", userHandler.Confirm).Methods("GET")
	r.HandleFunc("/api/users/forgot-password", userHandler.ForgotPassword).Methods("POST")
	r.HandleFunc("/api/users/forgot-password/{token}", userHandler.CheckResetToken).Methods("GET")
	r.HandleFunc("/api/users/forgot-password/{token}", userHandler.ResetPassword).Methods("POST")

	// Everything below requires a valid session token.
	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)
	protected.HandleFunc("/api/users/profile", userHandler.Profile).Methods("GET")

	protected.HandleFunc("/api/projects", projectHandler.ListProjects).Methods("GET")
	protected.HandleFunc("/api/projects", projectHandler.CreateProject).Methods("POST")
	protected.HandleFunc("/api/projects/collaborators", projectHandler.FindCollaborator).Methods("POST")
	protected.HandleFunc("/api/projects/collaborators/{id}", projectHandler.AddCollaborator).Methods("POST")
	protected.HandleFunc("/api/projects/delete-collaborator/{id}", projectHandler.RemoveCollaborator).Methods("POST")
	protected.HandleFunc("/api/projects/{id}", projectHandler.GetProject).Methods("GET")
	protected.HandleFunc("/api/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	protected.HandleFunc("/api/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	protected.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/api/tasks/state/{id}", taskHandler.ToggleTaskState).Methods("POST")
	protected.HandleFunc("/api/tasks/{id}", taskHandler.GetTask).Methods("GET")
	protected.HandleFunc("/api/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	protected.HandleFunc("/api/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	// Realtime fan-out; the handshake authenticates on its own.
	r.Handle("/ws", realtimeHandler.WebsocketHandler())

	corsRouter := enableCORS(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	logging.Logger.Infof("Event ID: SERVER_LISTENING, Description: Backend server running on port %s", port)
	if err := http.ListenAndServe(":"+port, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FAILED, Description: Server stopped: %v", err)
	}
}
