package middleware

import (
	"time"

	"go-booking-api/core/constants"
	"go-booking-api/core/controller"
	"go-booking-api/core/errors"
	"go-booking-api/core/logger"
	"go-booking-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	controller.BaseController
}

func NewMiddleware() *Middleware {
	return &Middleware{BaseController: controller.NewBaseController()}
}

// AuthMiddleware requires a valid bearer token and stores its claims under ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.GetTokenFromHeader(c)
			if token == "" {
				return m.Unauthorized(errors.ErrMissingAuthorizationHeader, "Missing authorization header")
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				logger.Warn("Middleware:AuthMiddleware:InvalidToken", "error", err)
				if errors.HasCode(err, errors.ErrTokenExpired) {
					return m.Unauthorized(errors.ErrTokenExpired, "Token expired")
				}
				return m.Unauthorized(errors.ErrInvalidTokenFormat, "Invalid token")
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present and otherwise lets the request through.
func (m *Middleware) OptionalAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.GetTokenFromHeader(c)
			if token == "" {
				return next(c)
			}
			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				logger.Warn("Middleware:OptionalAuthMiddleware:IgnoringToken", "error", err)
				return next(c)
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

func setClaims(c echo.Context, claims *utils.TokenClaims) {
	c.Set(constants.ContextTokenData, claims)
	ctx := logger.WithContext(c.Request().Context(), "user_id", claims.UserID.String())
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequestLogger assigns a request id and logs one line per request.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(constants.HeaderRequestID)
			if requestID == "" {
				requestID = utils.GenerateID()
			}
			c.Set(constants.ContextRequestID, requestID)
			c.Response().Header().Set(constants.HeaderRequestID, requestID)
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), "request_id", requestID)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.FromContext(c.Request().Context()).Info("HTTP:Request",
				"method", req.Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
