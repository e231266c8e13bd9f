package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mcq-trainer/backend/internal/assets"
	"github.com/mcq-trainer/backend/internal/auth"
	"github.com/mcq-trainer/backend/internal/database"
	"github.com/mcq-trainer/backend/internal/dataset"
	"github.com/mcq-trainer/backend/internal/explain"
	"github.com/mcq-trainer/backend/internal/middleware"
	"github.com/mcq-trainer/backend/internal/models"
	"github.com/mcq-trainer/backend/internal/overrides"
	"github.com/mcq-trainer/backend/internal/questions"
	"github.com/mcq-trainer/backend/internal/session"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	datasetStore := dataset.NewStore()
	assetStore := assets.NewStore()
	overrideStore := overrides.NewStore(db)
	explainer := explain.NewExplainer()

	questionService := questions.NewService(datasetStore, assetStore, overrideStore, explainer)
	sessionService := session.NewService(datasetStore, overrideStore, overrideStore)

	preloadDataset(questionService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionService)
	sessionHandler := session.NewHandler(sessionService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/datasets/load", questionHandler.LoadDataset).Methods("POST")
	protected.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	protected.HandleFunc("/questions/{id}", questionHandler.GetQuestion).Methods("GET")
	protected.HandleFunc("/questions/{id}/quality", questionHandler.GetQuality).Methods("GET")
	protected.HandleFunc("/questions/{id}/cluster", questionHandler.GetCluster).Methods("GET")
	protected.HandleFunc("/questions/{id}/image-cluster", questionHandler.GetImageCluster).Methods("GET")
	protected.HandleFunc("/questions/{id}/explain", questionHandler.Explain).Methods("POST")
	protected.HandleFunc("/images/{dataset}/{key}", questionHandler.GetImage).Methods("GET")

	protected.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{id}/finish", sessionHandler.FinishSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}/review", sessionHandler.GetReview).Methods("GET")
	protected.HandleFunc("/sessions/{id}/questions/{qid}", sessionHandler.GetQuestionDisplay).Methods("GET")
	protected.HandleFunc("/sessions/{id}/answers/{qid}", sessionHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/sessions/{id}/questions/{qid}/force-original", sessionHandler.SetForceOriginal).Methods("POST")

	protected.HandleFunc("/overrides/{dataset}/{qid}", questionHandler.GetOverride).Methods("GET")
	protected.HandleFunc("/overrides/{dataset}/{qid}", questionHandler.PutOverride).Methods("PUT")
	protected.HandleFunc("/overrides/{dataset}/{qid}", questionHandler.DeleteOverride).Methods("DELETE")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// preloadDataset loads an initial dataset at startup when DATASET_URLS is
// set (comma-separated payload URLs, optional DATASET_IMAGE_ZIP_URL).
func preloadDataset(svc *questions.Service) {
	urls := os.Getenv("DATASET_URLS")
	if urls == "" {
		return
	}
	req := models.LoadDatasetRequest{
		DatasetID:   os.Getenv("DATASET_ID"),
		PayloadURLs: strings.Split(urls, ","),
		ImageZipURL: os.Getenv("DATASET_IMAGE_ZIP_URL"),
	}
	resp, err := svc.LoadDataset(context.Background(), req)
	if err != nil {
		log.Printf("WARN: [startup] dataset preload failed: %v", err)
		return
	}
	log.Printf("[startup] preloaded dataset %s with %d questions", resp.DatasetID, resp.QuestionCount)
}
