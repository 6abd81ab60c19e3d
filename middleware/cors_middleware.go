package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS allows the configured origins plus the local storefront dev servers.
// The frontend URL is always allowed.
func CORS(frontendURL string, origins []string) echo.MiddlewareFunc {
	allowed := append([]string{}, defaultOrigins...)
	if frontendURL != "" {
		allowed = append(allowed, frontendURL)
	}
	allowed = append(allowed, origins...)

	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: allowed,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "X-Requested-With",
		},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentLength, echo.HeaderContentType, echo.HeaderContentDisposition},
		MaxAge:           86400,
	})
}
