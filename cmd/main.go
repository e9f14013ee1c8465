package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rakibalmuqtadir286-byte/bijoy313/configs"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/daemon"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/db"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/handlers"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/middleware"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/notify"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/payments"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/referral"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

func main() {
	cfg := configs.LoadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db.Connect(cfg.MongoURI)
	utils.InitJwtSecret(cfg.JWTSecret)

	r := mux.NewRouter()
	r.Use(middleware.JSONMiddleware)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	authHandler := &handlers.AuthHandler{}
	authHandler.ConfigCreds.AdminId = cfg.AdminId
	authHandler.ConfigCreds.AdminUsername = cfg.AdminUsername
	authHandler.ConfigCreds.AdminPassword = cfg.AdminPassword
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	auditCol := db.GetCollection(cfg.DBName, "audit_logs")
	auditLogger := utils.Logger{Collection: auditCol}

	memberCol := db.GetCollection(cfg.DBName, "users")
	walletCol := db.GetCollection(cfg.DBName, "wallets")

	userHandler := handlers.NewUserHandler(memberCol, auditLogger)
	r.HandleFunc("/users", userHandler.RegisterUser).Methods("POST")
	r.HandleFunc("/users/paid", userHandler.PaidUsers).Methods("GET")
	r.HandleFunc("/users/by-uid/{uid}", userHandler.GetUserByUID).Methods("GET")
	r.HandleFunc("/users/check-referral/{code}", userHandler.CheckReferral).Methods("GET")
	r.HandleFunc("/users/find-referrer-by-code/{code}", userHandler.FindReferrerByCode).Methods("GET")
	r.HandleFunc("/users/verify-user", userHandler.VerifyUser).Methods("PATCH")

	walletHandler := &handlers.WalletHandler{
		WalletCol:   walletCol,
		DepositCol:  db.GetCollection(cfg.DBName, "deposit"),
		AuditLogger: auditLogger,
	}
	r.HandleFunc("/wallets", walletHandler.CreateWallet).Methods("POST")
	r.HandleFunc("/wallets/check-balance", walletHandler.CheckBalance).Methods("POST")
	r.HandleFunc("/wallets/deduct", walletHandler.Deduct).Methods("POST")
	r.HandleFunc("/wallets/{uid}", walletHandler.GetWallet).Methods("GET")

	referralHandler := &handlers.ReferralHandler{MemberCol: memberCol}
	r.HandleFunc("/referrals/tree/{code}", referralHandler.ReferralTree).Methods("GET")
	r.HandleFunc("/referrals/count/{uid}", referralHandler.ReferralCount).Methods("GET")
	r.HandleFunc("/referrals/{uid}", referralHandler.ListReferrals).Methods("GET")

	productHandler := handlers.NewProductHandler(db.GetCollection(cfg.DBName, "products"), auditLogger)
	r.HandleFunc("/products", productHandler.AddProduct).Methods("POST")
	r.HandleFunc("/products", productHandler.GetProducts).Methods("GET")
	r.HandleFunc("/products/search", productHandler.SearchProducts).Methods("GET")
	r.HandleFunc("/products/category/{slug}", productHandler.GetByCategory).Methods("GET")
	r.HandleFunc("/products/{id}", productHandler.GetProduct).Methods("GET")

	microJobHandler := &handlers.MicroJobHandler{
		JobCol:       db.GetCollection(cfg.DBName, "micro_jobs"),
		AppliedCol:   db.GetCollection(cfg.DBName, "applied_micro_jobs"),
		PendingCol:   db.GetCollection(cfg.DBName, "microjob_pending_works"),
		CompletedCol: db.GetCollection(cfg.DBName, "microjob_complete_works"),
		CancelCol:    db.GetCollection(cfg.DBName, "micro_job_cancel_works"),
		WalletCol:    walletCol,
		AuditLogger:  auditLogger,
	}
	r.HandleFunc("/microjobs", microJobHandler.PostJob).Methods("POST")
	r.HandleFunc("/microjobs", microJobHandler.GetApprovedJobs).Methods("GET")
	r.HandleFunc("/microjobs/apply", microJobHandler.Apply).Methods("POST")
	r.HandleFunc("/microjobs/submit-work", microJobHandler.SubmitWork).Methods("POST")
	r.HandleFunc("/microjobs/reports/{id}/approve", microJobHandler.ApproveReport).Methods("POST")
	r.HandleFunc("/microjobs/reports/{id}/cancel", microJobHandler.CancelReport).Methods("POST")
	r.HandleFunc("/microjobs/{id}", microJobHandler.GetJob).Methods("GET")

	smsNotifier := notify.NewSMSNotifier(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSenderID, cfg.AdminPhone, log)

	withdrawCol := db.GetCollection(cfg.DBName, "withdraw_reports")
	withdrawalHandler := &handlers.WithdrawalHandler{
		WalletCol:   walletCol,
		MemberCol:   memberCol,
		ReportCol:   withdrawCol,
		AuditLogger: auditLogger,
		Notifier:    smsNotifier,
	}
	withdrawalHandler.Config.MinimumBalance = cfg.MinimumWithdrawBalance
	r.HandleFunc("/withdrawals", withdrawalHandler.Withdraw).Methods("POST")
	r.HandleFunc("/withdrawals/{uid}", withdrawalHandler.History).Methods("GET")

	gateway := payments.NewClient(cfg.GatewayBaseURL, cfg.GatewayStoreID, cfg.GatewayStorePassword)
	paymentHandler := &handlers.PaymentHandler{
		OrderCol:    db.GetCollection(cfg.DBName, "order_collections"),
		DepositCol:  db.GetCollection(cfg.DBName, "deposit"),
		PaymentCol:  db.GetCollection(cfg.DBName, "payments"),
		WalletCol:   walletCol,
		MemberCol:   memberCol,
		Gateway:     gateway,
		AuditLogger: auditLogger,
	}
	paymentHandler.Config.SuccessURL = cfg.PaymentSuccessURL
	paymentHandler.Config.FailURL = cfg.PaymentFailURL
	paymentHandler.Config.CancelURL = cfg.PaymentCancelURL
	paymentHandler.Config.IPNURL = cfg.PaymentIPNURL
	r.HandleFunc("/payments/initiate", paymentHandler.Initiate).Methods("POST")
	r.HandleFunc("/payments/ipn", paymentHandler.IPN).Methods("POST")

	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.JWTAuthMiddleware)

	metricsHandler := handlers.MetricsHandler{
		MemberCol:   memberCol,
		WalletCol:   walletCol,
		JobCol:      db.GetCollection(cfg.DBName, "micro_jobs"),
		WithdrawCol: withdrawCol,
	}
	adminRouter.HandleFunc("/metrics", metricsHandler.GetMetrics).Methods("GET")
	adminRouter.HandleFunc("/payment-reports", paymentHandler.Reports).Methods("GET")
	adminRouter.HandleFunc("/users/{id}/payment", userHandler.UpdatePayment).Methods("PATCH")

	// Background sweeps. SkipIfStillRunning keeps each sweep single-writer:
	// a tick that fires while the previous run is still going is dropped.
	store := referral.NewMongoStore(memberCol, walletCol)
	evaluator := referral.NewEvaluator(store, log)
	evaluator.Audit = auditLogger
	sweeper := referral.NewSweeper(store, evaluator, cfg.ReferralBonus, cfg.SweepOperationTimeout, log)
	auditExporter := &daemon.AuditExporter{Coll: auditCol, Log: log}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))))
	c.Schedule(cron.Every(cfg.LeadershipSweepEvery), cron.FuncJob(sweeper.LeadershipSweep))
	c.Schedule(cron.Every(cfg.ReferralSweepEvery), cron.FuncJob(sweeper.ReferralBonusSweep))
	c.Schedule(cron.Every(cfg.WalletSweepEvery), cron.FuncJob(sweeper.WalletReconcileSweep))
	c.Schedule(cron.Every(cfg.AuditExportEvery), auditExporter)

	go sweeper.LeadershipSweep() // initial pass before the first tick
	c.Start()

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	<-cronCtx.Done()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	if err := db.Disconnect(ctx); err != nil {
		log.Warnf("MongoDB disconnect failed: %v", err)
	}
	log.Info("Server shut down.")
}
