package app

import (
	httpMW "github.com/ModularHallway100/harmony-backend/internal/http/middleware"
	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, clients.Verifier),
	}
}
