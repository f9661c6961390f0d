package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/database"
	"furniro_back_end/internal/handlers/contact"
	"furniro_back_end/internal/handlers/order"
	"furniro_back_end/internal/handlers/payement"
	"furniro_back_end/internal/handlers/product"
	"furniro_back_end/internal/routes"
	"furniro_back_end/internal/services"
	"furniro_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration invalide : ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =============================================
	// 🟢 CONNEXIONS
	// =============================================

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoClient, db, err := database.ConnectMongo(startCtx, cfg.Mongo)
	if err != nil {
		log.Fatal("❌ ", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Println("⚠️ Déconnexion MongoDB:", err)
		}
	}()
	if err := store.EnsureIndexes(startCtx, db); err != nil {
		log.Fatal("❌ Création des index MongoDB: ", err)
	}

	var cacheStore cache.Store = cache.Noop{}
	if redisClient, err := cache.Connect(startCtx, cfg.Redis.Host, cfg.Redis.Password); err != nil {
		log.Println("⚠️ Redis indisponible, cache et verrous désactivés :", err)
	} else {
		defer redisClient.Close()
		cacheStore = cache.NewRedis(redisClient)
	}

	var search services.SearchIndex = services.NoopSearch{}
	esClient, err := database.ConnectElastic(cfg.Elastic)
	if err != nil {
		log.Println("⚠️ Elasticsearch indisponible, recherche via MongoDB :", err)
	} else if esClient != nil {
		idx := services.NewElasticIndex(esClient, cfg.Elastic.Index)
		if err := idx.EnsureIndex(startCtx); err != nil {
			log.Println("⚠️ Index Elasticsearch non créé :", err)
		}
		search = idx
	}

	minioClient, err := database.ConnectMinIO(startCtx, cfg.Storage)
	if err != nil {
		log.Fatal("❌ ", err)
	}
	storage := services.NewMinioStorage(minioClient, cfg.Storage.Bucket, cfg.Storage.PublicURL)

	var audit services.AuditLog = services.NoopAudit{}
	scylla, err := database.ConnectScylla(cfg.Scylla)
	if err != nil {
		log.Println("⚠️ ScyllaDB indisponible, audit désactivé :", err)
	} else if scylla != nil {
		defer scylla.Close()
		a := services.NewScyllaAudit(scylla)
		if err := a.EnsureSchema(startCtx); err != nil {
			log.Println("⚠️ Schéma d'audit non créé :", err)
		} else {
			audit = a
		}
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTP.Host != "" {
		smtp, err := services.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			log.Fatal("❌ ", err)
		}
		mailer = smtp
	} else {
		log.Println("⚠️ SMTP_HOST non configuré, les e-mails sont seulement journalisés")
	}

	var mailingList services.MailingList = services.NoopMailingList{}
	if cfg.Mailchimp.APIKey != "" {
		mc, err := services.NewMailchimpClient(cfg.Mailchimp.APIKey, cfg.Mailchimp.ListID)
		if err != nil {
			log.Fatal("❌ ", err)
		}
		mailingList = mc
	}

	// =============================================
	// 🟢 SERVICES
	// =============================================

	products := store.NewMongoProducts(db)
	orderStore := store.NewMongoOrders(db)

	catalog := services.NewCatalogService(products, store.NewMongoCategories(db), store.NewMongoReviews(db), cacheStore, search)
	reviews := services.NewReviewService(store.NewMongoReviews(db), products)
	images := services.NewImageDeriver(storage, cfg.Image)
	orders := services.NewOrderService(orderStore, products, audit)
	payments := services.NewPaymentService(orders, products, services.NewStripeGateway(cfg.Stripe), cacheStore, audit, cfg)
	reminders := services.NewReminderService(orderStore, payments, mailer, cacheStore, audit, cfg.Reminder.Discount)
	feedback := services.NewFeedbackService(store.NewMongoFeedback(db), mailer)
	offers := services.NewMailOfferService(store.NewMongoMailOffers(db), mailingList)

	scheduler, err := services.NewReminderScheduler(cfg.Reminder.Cron, reminders)
	if err != nil {
		log.Fatal("❌ ", err)
	}
	scheduler.Start()

	// =============================================
	// 🟢 HTTP
	// =============================================

	gin.SetMode(gin.ReleaseMode)
	r := routes.NewRouter(routes.Handlers{
		Product: product.NewHandler(catalog, reviews, images, cfg.Image.MaxFiles),
		Order:   order.NewHandler(orders, payments, audit),
		Payment: payement.NewHandler(payments),
		Contact: contact.NewHandler(feedback, offers),
	}, cacheStore, cfg.HTTP.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 Serveur Furniro lancé sur le port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Serveur HTTP: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt demandé, fermeture des connexions...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️ Arrêt du serveur HTTP:", err)
	}
	scheduler.Stop(shutdownCtx)
	log.Println("👋 Serveur arrêté")
}
