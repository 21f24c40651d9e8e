package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/cache"
	"slumpers-ticketing/internal/database"
	"slumpers-ticketing/internal/gateway"
	"slumpers-ticketing/internal/handler"
	"slumpers-ticketing/internal/notifier"
	"slumpers-ticketing/internal/queue"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/internal/scheduler"
	"slumpers-ticketing/internal/service"
	"slumpers-ticketing/internal/ticketcode"
	"slumpers-ticketing/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	deliveryQueue, err := queue.NewRedisStreamDeliveryQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize delivery queue: %v", err)
	}

	ticketRepo := repository.NewTicketRepository(pool)
	intentRepo := repository.NewPaymentIntentRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	codec := ticketcode.NewCodec(cfg.Ticket.SigningSecret)
	tokenCache := cache.NewRedisDarajaTokenCache(rdb)
	stkGateway := gateway.NewMpesaClient(cfg.Mpesa, tokenCache, cfg.Server.PublicURL+"/api/v1/payments/mpesa/callback")
	cardGateway := gateway.NewStripeClient(cfg.Stripe.SecretKey)

	notifiers, err := notifier.NewRegistry(cfg.Notify)
	if err != nil {
		log.Fatalf("Failed to initialize notifiers: %v", err)
	}

	ticketService := service.NewTicketService(ticketRepo, codec)
	verificationService := service.NewVerificationService(ticketRepo, codec)
	paymentService := service.NewPaymentService(intentRepo, ticketService, stkGateway, cardGateway, deliveryQueue, "KES")
	bookingService := service.NewBookingService(bookingRepo)

	deliveryWorker := worker.NewDeliveryWorker(deliveryQueue, ticketRepo, notifiers)
	if err := deliveryWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start delivery worker: %v", err)
	}

	scheduler.NewRetentionScheduler(ticketService, cfg.Ticket.RetentionDays).Start(ctx)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewPaymentHandler(paymentService).RegisterRoutes(router)
	handler.NewVerificationHandler(verificationService, ticketService).RegisterRoutes(router)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
