package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicgrid/civic-complaints-api/api"
	"github.com/civicgrid/civic-complaints-api/api/scheduler"
	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	redis     *redis.Client
	uploader  EvidenceUploader
	hub       *LiveHub
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	c := Complaint{
		DB:       databases.NewComplaintDatabase(a.dbHelper),
		MDB:      databases.NewMunicipalityDatabase(a.dbHelper),
		Uploader: a.uploader,
		Hub:      a.hub,
	}
	m := Municipality{
		DB:  databases.NewMunicipalityDatabase(a.dbHelper),
		CDB: databases.NewComplaintDatabase(a.dbHelper),
	}
	s := State{
		DB:  databases.NewStateDatabase(a.dbHelper),
		MDB: databases.NewMunicipalityDatabase(a.dbHelper),
	}
	pr := PasswordReset{
		MDB: databases.NewMunicipalityDatabase(a.dbHelper),
		RDB: databases.NewPasswordResetDatabase(a.dbHelper),
	}
	cloudinaryHandler := CloudinaryHandler{}

	loginLimiter := api.NewLoginRateLimiter(a.redis, 10, time.Minute)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.Handle("/municipalities/login", loginLimiter.Middleware(http.HandlerFunc(m.LoginHandler))).Methods("POST")
	r.Handle("/municipalities/categories", http.HandlerFunc(m.CategoriesHandler)).Methods("GET")
	r.Handle("/municipalities/allDistricts", api.Middleware(http.HandlerFunc(m.AllDistrictsHandler))).Methods("GET")
	r.Handle("/municipalities/fetchDistrict", api.Middleware(http.HandlerFunc(m.FetchDistrictHandler))).Methods("POST")
	r.Handle("/municipalities/fetchByName", api.Middleware(http.HandlerFunc(m.FetchByNameHandler))).Methods("POST")
	r.Handle("/municipalities/forgot-password", http.HandlerFunc(pr.ForgotPasswordHandler)).Methods("POST")
	r.Handle("/municipalities/reset-password", http.HandlerFunc(pr.ResetPasswordHandler)).Methods("POST")

	r.Handle("/complaints/update", api.Middleware(http.HandlerFunc(c.UpdateComplaintHandler))).Methods("PATCH")
	r.Handle("/complaints/uploadEvidence", api.Middleware(http.HandlerFunc(c.UploadEvidenceHandler))).Methods("POST")
	r.Handle("/complaints/filter", api.Middleware(http.HandlerFunc(c.FilterComplaintsHandler))).Methods("POST")
	r.Handle("/complaints/{id}", api.Middleware(http.HandlerFunc(c.ComplaintByIDHandler))).Methods("GET")

	r.Handle("/State/login", loginLimiter.Middleware(http.HandlerFunc(s.LoginHandler))).Methods("POST")
	r.Handle("/State/allDistricts", api.Middleware(http.HandlerFunc(s.DistrictsHandler))).Methods("POST")

	r.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	r.HandleFunc("/ws/updates", a.hub.ServeWS)

	r.Use(api.LoggingMiddleware)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("civic-complaints-api has connected to the database")

	// Redis only backs login rate limiting, so it stays optional
	if a.Config.RedisAddress != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.Config.RedisAddress,
			Password: a.Config.RedisPassword,
		})
	}

	a.uploader, err = NewCloudinaryUploader()
	if err != nil {
		zap.S().With(err).Error("failed to initialize media storage")
		return err
	}

	a.hub = NewLiveHub()

	a.scheduler = scheduler.New(
		databases.NewComplaintDatabase(a.dbHelper),
		databases.NewMunicipalityDatabase(a.dbHelper),
	)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
