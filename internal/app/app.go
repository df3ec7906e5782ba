// Package app assembles each service from configuration: storage, auth,
// domain services and the HTTP handler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Cheertaboi/shop-microservices/internal/api"
	"github.com/Cheertaboi/shop-microservices/internal/api/handlers"
	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/config"
	"github.com/Cheertaboi/shop-microservices/internal/gateway"
	"github.com/Cheertaboi/shop-microservices/internal/repository"
	"github.com/Cheertaboi/shop-microservices/internal/service"
	"github.com/Cheertaboi/shop-microservices/internal/upstream"
	"github.com/Cheertaboi/shop-microservices/pkg/db"
)

// Service is a ready-to-serve handler plus whatever must be released when
// the process stops.
type Service struct {
	Handler http.Handler
	conn    *db.Conn
}

func (s *Service) Close(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(ctx)
}

// Build opens storage when the service needs it and wires the handler for
// cfg.Service.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*Service, error) {
	if cfg.Service == config.ServiceGateway {
		h, err := buildGateway(cfg, log)
		if err != nil {
			return nil, err
		}
		return &Service{Handler: h}, nil
	}

	conn, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	if err := repository.Prepare(ctx, conn); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("prepare store: %w", err)
	}
	log.Info("store ready", "driver", conn.Driver)

	h, err := buildHandler(cfg, conn, log)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return &Service{Handler: h, conn: conn}, nil
}

func buildHandler(cfg config.Config, conn *db.Conn, log *slog.Logger) (http.Handler, error) {
	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	switch cfg.Service {
	case config.ServiceUser:
		hasher, err := auth.NewHasher(cfg.PasswordHasher)
		if err != nil {
			return nil, err
		}
		svc := service.NewUserService(userRepo(conn), hasher, jwt, log)
		return api.NewUserRouter(handlers.NewUserHandler(svc, log), jwt, log), nil

	case config.ServiceProduct:
		svc := service.NewProductService(productRepo(conn), log)
		return api.NewProductRouter(handlers.NewProductHandler(svc, log), jwt, log), nil

	case config.ServiceCart:
		catalog := upstream.NewProductClient(cfg.ProductServiceURL, cfg.UpstreamTimeout)
		svc := service.NewCartService(cartRepo(conn), catalog, log)
		return api.NewCartRouter(handlers.NewCartHandler(svc, log), jwt, log), nil

	case config.ServiceOrder:
		svc := service.NewOrderService(
			orderRepo(conn),
			upstream.NewCartClient(cfg.CartServiceURL, cfg.UpstreamTimeout),
			upstream.NewUserClient(cfg.UserServiceURL, cfg.UpstreamTimeout),
			upstream.NewProductClient(cfg.ProductServiceURL, cfg.UpstreamTimeout),
			log,
		)
		return api.NewOrderRouter(handlers.NewOrderHandler(svc, log), jwt, log), nil
	}
	return nil, fmt.Errorf("unknown service %q", cfg.Service)
}

func buildGateway(cfg config.Config, log *slog.Logger) (http.Handler, error) {
	routes, err := gateway.ResolveRoutes(cfg)
	if err != nil {
		return nil, err
	}
	return gateway.New(gateway.Options{
		Routes:          routes,
		ResponseTimeout: cfg.GatewayResponseTimeout,
		IdleTimeout:     cfg.GatewayIdleTimeout,
		ProbeTimeout:    cfg.UpstreamTimeout,
		RateRPS:         cfg.RateRPS,
		RateBurst:       cfg.RateBurst,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, log)
}

func userRepo(conn *db.Conn) service.UserRepo {
	switch {
	case conn.Mongo != nil:
		return repository.NewMongoUserRepo(conn.Mongo)
	case conn.SQL != nil:
		return repository.NewPostgresUserRepo(conn.SQL)
	}
	return repository.NewMemoryUserRepo()
}

func productRepo(conn *db.Conn) service.ProductRepo {
	switch {
	case conn.Mongo != nil:
		return repository.NewMongoProductRepo(conn.Mongo)
	case conn.SQL != nil:
		return repository.NewPostgresProductRepo(conn.SQL)
	}
	return repository.NewMemoryProductRepo()
}

func cartRepo(conn *db.Conn) service.CartRepo {
	switch {
	case conn.Mongo != nil:
		return repository.NewMongoCartRepo(conn.Mongo)
	case conn.SQL != nil:
		return repository.NewPostgresCartRepo(conn.SQL)
	}
	return repository.NewMemoryCartRepo()
}

func orderRepo(conn *db.Conn) service.OrderRepo {
	switch {
	case conn.Mongo != nil:
		return repository.NewMongoOrderRepo(conn.Mongo)
	case conn.SQL != nil:
		return repository.NewPostgresOrderRepo(conn.SQL)
	}
	return repository.NewMemoryOrderRepo()
}
