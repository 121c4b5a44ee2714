package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/poofware/property-service/internal/app"
	"github.com/poofware/property-service/internal/config"
	"github.com/poofware/property-service/internal/controllers"
	"github.com/poofware/property-service/internal/middleware"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/routes"
	"github.com/poofware/property-service/internal/services"
	"github.com/poofware/property-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize property-service:", err)
	}
	defer application.Close()

	tenantRepo := repositories.NewTenantRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	leaseRepo := repositories.NewLeaseRepository(application.DB)
	invoiceRepo := repositories.NewInvoiceRepository(application.DB)
	maintRepo := repositories.NewMaintenanceRequestRepository(application.DB)
	seqRepo := repositories.NewSequenceRepository(application.DB)

	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)

	smsSender := services.NewTwilioSender(twClient, cfg.LDFlag_TwilioFromPhone)
	emailSender := services.NewSendGridSender(sgClient, cfg.AppName, cfg.LDFlag_SendgridFromEmail, cfg.LDFlag_SendgridSandboxMode)

	occupancyService := services.NewOccupancyService(unitRepo, leaseRepo)
	catalogService := services.NewCatalogService(propRepo, unitRepo, seqRepo)
	leaseService := services.NewLeaseService(leaseRepo, unitRepo, seqRepo, occupancyService)
	billingService := services.NewBillingService(leaseRepo, invoiceRepo, unitRepo, seqRepo)
	rentSMSService := services.NewRentSMSService(invoiceRepo, unitRepo, tenantRepo, smsSender, cfg.LDFlag_RentReminderLeadDays)
	maintenanceService := services.NewMaintenanceService(maintRepo, leaseRepo, unitRepo, propRepo, seqRepo, emailSender)
	portalService := services.NewPortalService(leaseRepo, invoiceRepo, unitRepo, maintRepo, maintenanceService)
	paymentService := services.NewPaymentService(invoiceRepo, rentSMSService, cfg.AppUrl)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedTestData(
			context.Background(),
			tenantRepo,
			propRepo,
			unitRepo,
			leaseRepo,
			seqRepo,
			occupancyService,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	healthController := controllers.NewHealthController(application)
	portalController := controllers.NewPortalController(portalService)
	paymentController := controllers.NewPaymentController(paymentService)
	managerController := controllers.NewManagerController(
		catalogService,
		leaseService,
		billingService,
		paymentService,
		maintenanceService,
	)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// The payment flow is reachable with a portal access token alone, so it
	// uses the optional variant that passes anonymous requests through.
	tokenOrAuth := router.NewRoute().Subrouter()
	tokenOrAuth.Use(middleware.OptionalAuthMiddleware(cfg.RSAPublicKey))
	tokenOrAuth.HandleFunc(routes.InvoiceTransaction, paymentController.TransactionHandler).Methods(http.MethodPost)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.PortalHome, portalController.HomeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalLeases, portalController.ListLeasesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalLeaseDetail, portalController.LeaseDetailHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalMaintenance, portalController.ListMaintenanceHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalMaintenanceNew, portalController.MaintenanceNewHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalMaintenanceItem, portalController.MaintenanceItemHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PortalMaintenanceSubmit, portalController.SubmitMaintenanceHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.InvoicePortalURL, paymentController.PortalURLHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.ManagerProperties, managerController.CreatePropertyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerProperties, managerController.ListPropertiesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ManagerPropertyDetail, managerController.PropertyDetailHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ManagerUnits, managerController.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerLeases, managerController.CreateLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerLeaseActivate, managerController.ActivateLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerLeaseEnd, managerController.EndLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerLeaseDates, managerController.UpdateLeaseDatesHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.ManagerLeaseInvoice, managerController.GenerateInvoiceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerInvoicePaid, managerController.MarkInvoicePaidHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerMaintenanceAssign, managerController.AssignMaintenanceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerMaintenanceStart, managerController.StartMaintenanceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerMaintenanceDone, managerController.DoneMaintenanceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ManagerMaintenanceRelink, managerController.RelinkMaintenanceHandler).Methods(http.MethodPut)

	c := cron.New()
	_, invoiceErr := c.AddFunc("5 0 * * *", func() {
		if e := billingService.GenerateRentInvoices(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled rent invoice generation failed")
		}
	})
	if invoiceErr != nil {
		utils.Logger.WithError(invoiceErr).Fatal("Failed to schedule rent invoice cron")
	}

	_, smsErr := c.AddFunc("0 9 * * *", func() {
		if e := rentSMSService.SendRentReminders(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled rent SMS run failed")
		}
	})
	if smsErr != nil {
		utils.Logger.WithError(smsErr).Fatal("Failed to schedule rent SMS cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("property-service failed to start:", err)
	}
}
