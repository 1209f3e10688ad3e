// README: Entry point; loads config, wires stores and services, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"tourbook/internal/config"
	httptransport "tourbook/internal/http"
	"tourbook/internal/infra"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/fleet"
	"tourbook/internal/modules/notify"
	"tourbook/internal/modules/payment"
	"tourbook/internal/modules/pricing"
	"tourbook/internal/modules/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("auth init: %v", err)
	}

	var (
		bookingStore booking.Repository
		fleetDir     interface {
			fleet.Directory
			booking.Resources
		}
		sessions    wizard.SessionStore
		redisClient *redis.Client
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Printf("[MAIN] store=memory; data is lost on restart")
		bookingStore = booking.NewMemoryStore()
		fleetDir = fleet.NewMemoryStore()
		sessions = wizard.NewMemorySessionStore(cfg.Wizard.SessionTTL)
	default:
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		if err := infra.ApplyMigrations(ctx, dbPool, cfg.DB.MigrationsDir); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
		bookingStore = booking.NewStore(dbPool)
		fleetDir = fleet.NewStore(dbPool)
		sessions = wizard.NewRedisSessionStore(redisClient, cfg.Wizard.SessionTTL)
	}

	notifiers := notify.Fanout{notify.LogNotifier{}}
	if cfg.SMTP.Host != "" {
		smtpClient, err := infra.NewSMTPClient(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		if err != nil {
			log.Fatalf("smtp init: %v", err)
		}
		notifiers = append(notifiers, notify.NewMailer(smtpClient, cfg.SMTP.From, cfg.SMTP.FromName, cfg.SMTP.AdminEmail))
	}
	if redisClient != nil {
		notifiers = append(notifiers, notify.NewPublisher(redisClient, notify.DefaultChannel))
	}

	pricingCfg := pricing.DefaultConfig()
	pricingCfg.Currency = cfg.Currency
	pricingSvc := pricing.NewService(pricingCfg)

	bookingSvc := booking.NewService(bookingStore,
		booking.WithResources(fleetDir),
		booking.WithNotifier(notifiers),
		booking.WithLocation(cfg.Wizard.Location),
	)
	wizardSvc := wizard.NewService(pricingSvc, sessions, bookingSvc, wizard.WithLocation(cfg.Wizard.Location))

	var paymentSvc *payment.Service
	if cfg.Stripe.SecretKey != "" {
		gateway := payment.NewStripeGateway(infra.NewStripe(cfg.Stripe.SecretKey), cfg.Stripe.WebhookSecret)
		paymentSvc = payment.NewService(gateway, bookingSvc)
	} else {
		log.Printf("[MAIN] STRIPE_SECRET_KEY not set; payment routes disabled")
	}

	router, err := httptransport.NewRouter(httptransport.RouterDeps{
		Bookings: bookingSvc,
		Wizard:   wizardSvc,
		Payments: paymentSvc,
		Fleet:    fleetDir,
		Verifier: verifier,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		log.Fatal(err)
	}
}

// newVerifier prefers Firebase and falls back to a static development token.
func newVerifier(ctx context.Context, cfg config.Config) (infra.TokenVerifier, error) {
	if cfg.Firebase.ProjectID != "" {
		return infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	}
	if cfg.Firebase.DevAdminToken == "" {
		return nil, errors.New("TOURBOOK_FIREBASE_PROJECT_ID or TOURBOOK_DEV_ADMIN_TOKEN is required")
	}
	log.Printf("[MAIN] using static development operator token")
	return infra.StaticVerifier{Token: cfg.Firebase.DevAdminToken, UID: "dev-operator", Role: "admin"}, nil
}
