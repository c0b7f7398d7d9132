package app

import (
	"net/http"

	"github.com/kegliz/qcec/internal/server/router"
)

func (a *appServer) routes() []*router.Route {
	return []*router.Route{
		{
			Name:        "root",
			Method:      http.MethodGet,
			Pattern:     "/",
			HandlerFunc: a.RootHandler,
		},
		{
			Name:        "health",
			Method:      http.MethodGet,
			Pattern:     "/health",
			HandlerFunc: a.HealthHandler,
		},
		{
			Name:        "api.verify",
			Method:      http.MethodPost,
			Pattern:     "/v1/verify",
			HandlerFunc: a.VerifyCircuits,
		},
	}
}
