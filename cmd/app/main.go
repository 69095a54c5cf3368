package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/stitchfactory/sf-order/config"
	"github.com/stitchfactory/sf-order/internal/module/customerapp/mediastore"
	customerapp_payment "github.com/stitchfactory/sf-order/internal/module/customerapp/payment"
	"github.com/stitchfactory/sf-order/internal/module/merchantapp/company"
	merchantapp_order "github.com/stitchfactory/sf-order/internal/module/merchantapp/order"
	"github.com/stitchfactory/sf-order/internal/module/merchantapp/pricingrule"
	"github.com/stitchfactory/sf-order/internal/pkg/jwt"
	internalMiddleware "github.com/stitchfactory/sf-order/internal/pkg/middleware"
	"github.com/stitchfactory/sf-order/internal/pkg/session"
	"github.com/stitchfactory/sf-order/pkg/applogger"
	"github.com/stitchfactory/sf-order/pkg/middleware"
	"github.com/stitchfactory/sf-order/pkg/monitoring"
	"github.com/stitchfactory/sf-order/pkg/postgresql"
	"github.com/stitchfactory/sf-order/pkg/pubsub"
	"github.com/stitchfactory/sf-order/pkg/redis"
	"github.com/stitchfactory/sf-order/pkg/server"
	"github.com/stitchfactory/sf-order/pkg/validator"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	mon := monitoring.NewOpenTelemetry(
		c.Application.Name,
		c.Application.Environment,
		c.Monitoring.OTLPEndpoint,
	)

	mon.Start(ctx)

	validate := validator.Get()

	hc := http.DefaultClient

	jsonWebToken := jwt.NewJSONWebToken(c.JWT.PrivateKey, c.JWT.PublicKey)

	psqldb := postgresql.GetDatabase()
	if err := psqldb.Ping(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	amqpConn, err := amqp.Dial(c.AMQP.URL)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Fatal("failed to connect to the message broker")
	}
	publisher := pubsub.PublisherFromAMQPConnection(logger, amqpConn, c.AMQP.Exchange)

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	session := session.NewRedisSessionStore(logger, rc)

	merchantSessionMiddleware := internalMiddleware.NewMerchantSessionMiddleware(jsonWebToken, session)

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	// merchant's app
	merchantappOrderRepo := merchantapp_order.NewOrderRepository(logger, psqldb)
	merchantappSlipRepo := merchantapp_order.NewSlipRepository(logger, psqldb)
	merchantappRuleRepo := pricingrule.NewRuleRepository(logger, psqldb)
	merchantappConfigRepo := company.NewConfigRepository(logger, psqldb)

	merchantappOrderUseCase := merchantapp_order.NewOrderUseCase(merchantapp_order.OrderUseCaseProperty{
		Logger:           logger,
		Timeout:          c.Application.Timeout,
		OrderRepository:  merchantappOrderRepo,
		SlipRepository:   merchantappSlipRepo,
		RuleRepository:   merchantappRuleRepo,
		ConfigRepository: merchantappConfigRepo,
		Publisher:        publisher,
	})
	merchantapp_order.InitHTTPHandler(router, merchantSessionMiddleware, validate, merchantappOrderUseCase)

	merchantappRuleUseCase := pricingrule.NewRuleUseCase(pricingrule.RuleUseCaseProperty{
		Logger:         logger,
		Timeout:        c.Application.Timeout,
		RuleRepository: merchantappRuleRepo,
	})
	pricingrule.InitHTTPHandler(router, merchantSessionMiddleware, validate, merchantappRuleUseCase)

	merchantappConfigUseCase := company.NewConfigUseCase(company.ConfigUseCaseProperty{
		Logger:           logger,
		Timeout:          c.Application.Timeout,
		ConfigRepository: merchantappConfigRepo,
	})
	company.InitHTTPHandler(router, merchantSessionMiddleware, validate, merchantappConfigUseCase)

	// customer's app
	customerappOrderRepo := customerapp_payment.NewOrderRepository(logger, psqldb)
	customerappSlipRepo := customerapp_payment.NewSlipRepository(logger, psqldb)
	mediaStoreRepo := mediastore.NewMediaStoreRepository(c.MediaStore.BaseURL, c.MediaStore.BasicAuthKey, logger, hc)

	customerappPaymentUseCase := customerapp_payment.NewPaymentUseCase(customerapp_payment.PaymentUseCaseProperty{
		Logger:               logger,
		Timeout:              c.Application.Timeout,
		OrderRepository:      customerappOrderRepo,
		SlipRepository:       customerappSlipRepo,
		MediaStoreRepository: mediaStoreRepo,
		Publisher:            publisher,
	})
	customerapp_payment.InitHTTPHandler(router, validate, customerappPaymentUseCase)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	publisher.Close()
	amqpConn.Close()
	psqldb.Close()
	rc.Close()
	mon.Stop(ctx)
}
