package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/civicgrid/civic-complaints-api/api/handlers"

	"go.uber.org/zap"

	"github.com/civicgrid/civic-complaints-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := config.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := a.Initialize(); err != nil { //initialize database and router
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("civic-complaints-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
