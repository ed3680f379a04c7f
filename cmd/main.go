package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/cravencooling/fsm/internal/ai"
	"github.com/cravencooling/fsm/internal/auth"
	"github.com/cravencooling/fsm/internal/config"
	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/handlers"
	"github.com/cravencooling/fsm/internal/ingest"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/pm"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	collections := db.NewCollections(client.Database(cfg.MongoDB))

	authService := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry)
	authMW := middleware.NewAuthMiddleware(authService, collections.Users)

	generator := &pm.Generator{
		Assets: collections.Assets,
		Sites:  collections.Sites,
		Jobs:   collections.Jobs,
		Events: collections.JobEvents,
	}
	summarizer := ai.NewSummarizer(cfg.OpenAIAPIKey)

	if cfg.MQTTBroker != "" {
		bridge, err := ingest.NewBridge(cfg.MQTTBroker, collections.Locations)
		if err != nil {
			log.WithError(err).Fatal("Failed to start MQTT location bridge")
		}
		defer bridge.Close()
	}

	authHandler := handlers.NewAuthHandler(authService, collections.Users)
	customerHandler := handlers.NewCustomerHandler(collections.Customers)
	siteHandler := handlers.NewSiteHandler(collections.Sites)
	assetHandler := handlers.NewAssetHandler(collections.Assets, collections.Jobs)
	jobHandler := handlers.NewJobHandler(collections.Jobs, collections.JobEvents, collections.Completions, collections.Assets)
	checklistHandler := handlers.NewChecklistHandler(collections.Checklists)
	quoteHandler := handlers.NewQuoteHandler(collections.Quotes)
	invoiceHandler := handlers.NewInvoiceHandler(collections.Invoices)
	partHandler := handlers.NewPartHandler(collections.Parts)
	fgasHandler := handlers.NewFGasHandler(collections.FGasLogs, collections.Assets)
	uploadHandler := handlers.NewUploadHandler(collections.Photos, cfg.UploadDir)
	reportsHandler := handlers.NewReportsHandler(collections.Customers, collections.Sites, collections.Assets, collections.Jobs, collections.Invoices, collections.Users)
	pmHandler := handlers.NewPMHandler(generator)
	portalHandler := handlers.NewPortalHandler(authService, collections.Portal, collections.Customers, collections.Sites, collections.Assets, collections.Jobs, collections.Completions, collections.Invoices)
	locationHandler := handlers.NewLocationHandler(collections.Locations, collections.Users)
	aiHandler := handlers.NewAIHandler(summarizer)
	pdfHandler := handlers.NewPDFHandler(collections.Jobs, collections.Completions, collections.Customers, collections.Sites, collections.Quotes, collections.Invoices)

	mux := http.NewServeMux()

	staff := func(h http.HandlerFunc) http.Handler { return authMW.RequireStaff(h) }
	staffToken := func(h http.HandlerFunc) http.Handler { return authMW.RequireStaffToken(h) }
	portal := func(h http.HandlerFunc) http.Handler { return authMW.RequirePortal(h) }

	mux.HandleFunc("GET /api/health", handlers.Health)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", staff(authHandler.Me))
	mux.Handle("GET /api/users", staff(authHandler.ListUsers))
	mux.Handle("GET /api/users/engineers", staff(authHandler.ListEngineers))

	mux.Handle("POST /api/customers", staff(customerHandler.Create))
	mux.Handle("GET /api/customers", staff(customerHandler.List))
	mux.Handle("GET /api/customers/{id}", staff(customerHandler.Get))
	mux.Handle("PUT /api/customers/{id}", staff(customerHandler.Update))
	mux.Handle("DELETE /api/customers/{id}", staff(customerHandler.Delete))

	mux.Handle("POST /api/sites", staff(siteHandler.Create))
	mux.Handle("GET /api/sites", staff(siteHandler.List))
	mux.Handle("GET /api/sites/{id}", staff(siteHandler.Get))
	mux.Handle("PUT /api/sites/{id}", staff(siteHandler.Update))
	mux.Handle("DELETE /api/sites/{id}", staff(siteHandler.Delete))

	mux.Handle("POST /api/assets", staff(assetHandler.Create))
	mux.Handle("GET /api/assets", staff(assetHandler.List))
	mux.Handle("GET /api/assets/pm-due", staff(assetHandler.PMDue))
	mux.Handle("GET /api/assets/{id}", staff(assetHandler.Get))
	mux.Handle("PUT /api/assets/{id}", staff(assetHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", staff(assetHandler.Delete))
	mux.Handle("GET /api/assets/{id}/history", staff(assetHandler.History))

	mux.Handle("POST /api/jobs", staff(jobHandler.Create))
	mux.Handle("GET /api/jobs", staff(jobHandler.List))
	mux.Handle("GET /api/jobs/scheduled", staff(jobHandler.Scheduled))
	mux.Handle("GET /api/jobs/my-jobs", staff(jobHandler.MyJobs))
	mux.Handle("GET /api/jobs/{id}", staff(jobHandler.Get))
	mux.Handle("PUT /api/jobs/{id}", staff(jobHandler.Update))
	mux.Handle("DELETE /api/jobs/{id}", staff(jobHandler.Delete))
	mux.Handle("GET /api/jobs/{id}/events", staff(jobHandler.Events))
	mux.Handle("POST /api/jobs/{id}/complete", staff(jobHandler.Complete))
	mux.Handle("GET /api/jobs/{id}/completion", staff(jobHandler.GetCompletion))
	mux.Handle("GET /api/jobs/{id}/photos", staff(uploadHandler.ListForJob))
	mux.Handle("GET /api/jobs/{id}/pdf", staffToken(pdfHandler.JobSheet))

	mux.Handle("POST /api/checklist-templates", staff(checklistHandler.Create))
	mux.Handle("GET /api/checklist-templates", staff(checklistHandler.List))

	mux.Handle("POST /api/quotes", staff(quoteHandler.Create))
	mux.Handle("GET /api/quotes", staff(quoteHandler.List))
	mux.Handle("GET /api/quotes/{id}", staff(quoteHandler.Get))
	mux.Handle("PUT /api/quotes/{id}/status", staff(quoteHandler.UpdateStatus))
	mux.Handle("DELETE /api/quotes/{id}", staff(quoteHandler.Delete))
	mux.Handle("GET /api/quotes/{id}/pdf", staffToken(pdfHandler.QuotePDF))

	mux.Handle("POST /api/invoices", staff(invoiceHandler.Create))
	mux.Handle("GET /api/invoices", staff(invoiceHandler.List))
	mux.Handle("GET /api/invoices/{id}", staff(invoiceHandler.Get))
	mux.Handle("PUT /api/invoices/{id}/status", staff(invoiceHandler.UpdateStatus))
	mux.Handle("DELETE /api/invoices/{id}", staff(invoiceHandler.Delete))
	mux.Handle("GET /api/invoices/{id}/pdf", staffToken(pdfHandler.InvoicePDF))

	mux.Handle("POST /api/parts", staff(partHandler.Create))
	mux.Handle("GET /api/parts", staff(partHandler.List))
	mux.Handle("GET /api/parts/{id}", staff(partHandler.Get))
	mux.Handle("PUT /api/parts/{id}", staff(partHandler.Update))
	mux.Handle("DELETE /api/parts/{id}", staff(partHandler.Delete))

	mux.Handle("POST /api/fgas/logs", staff(fgasHandler.CreateLog))
	mux.Handle("GET /api/fgas/logs", staff(fgasHandler.ListLogs))
	mux.Handle("GET /api/fgas/logs/{id}", staff(fgasHandler.GetLog))
	mux.Handle("DELETE /api/fgas/logs/{id}", staff(fgasHandler.DeleteLog))
	mux.Handle("GET /api/fgas/dashboard", staff(fgasHandler.Dashboard))
	mux.Handle("GET /api/fgas/leak-check-due", staff(fgasHandler.LeakCheckDue))

	mux.Handle("POST /api/upload/photo", staff(uploadHandler.Upload))
	mux.HandleFunc("GET /api/photos/{id}", uploadHandler.Get)
	mux.Handle("DELETE /api/photos/{id}", staff(uploadHandler.Delete))

	mux.Handle("GET /api/dashboard/stats", staff(reportsHandler.DashboardStats))
	mux.Handle("GET /api/reports/dashboard/stats", staff(reportsHandler.DashboardStats))
	mux.Handle("GET /api/reports/jobs-by-status", staff(reportsHandler.JobsByStatus))
	mux.Handle("GET /api/reports/jobs-by-engineer", staff(reportsHandler.JobsByEngineer))
	mux.Handle("GET /api/reports/pm-due-list", staff(reportsHandler.PMDueList))

	mux.Handle("POST /api/pm/generate-jobs", staff(pmHandler.GenerateJobs))
	mux.Handle("GET /api/pm/status", staff(pmHandler.Status))

	mux.Handle("POST /api/portal/create-access", staff(portalHandler.CreateAccess))
	mux.Handle("GET /api/portal/access-list", staff(portalHandler.AccessList))
	mux.Handle("DELETE /api/portal/access/{id}", staff(portalHandler.RevokeAccess))
	mux.HandleFunc("POST /api/portal/login", portalHandler.Login)
	mux.Handle("GET /api/portal/dashboard", portal(portalHandler.Dashboard))
	mux.Handle("GET /api/portal/sites", portal(portalHandler.Sites))
	mux.Handle("GET /api/portal/assets", portal(portalHandler.Assets))
	mux.Handle("GET /api/portal/service-history", portal(portalHandler.ServiceHistory))
	mux.Handle("GET /api/portal/upcoming-pm", portal(portalHandler.UpcomingPM))
	mux.Handle("GET /api/portal/invoices", portal(portalHandler.Invoices))

	mux.Handle("POST /api/locations/track", staff(locationHandler.Track))
	mux.Handle("POST /api/locations/track/single", staff(locationHandler.TrackSingle))
	mux.Handle("GET /api/locations/engineers", staff(locationHandler.ActiveEngineers))
	mux.Handle("GET /api/locations/engineer/{id}", staff(locationHandler.EngineerHistory))
	mux.Handle("GET /api/locations/engineer/{id}/latest", staff(locationHandler.EngineerLatest))

	mux.Handle("POST /api/ai/summarize-notes", staff(aiHandler.SummarizeNotes))

	handler := middleware.CORS(cfg.CORSOrigins)(mux)

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
}
