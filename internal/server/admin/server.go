package admin

import (
	"contest-platform/factory"
	"contest-platform/feemanager"
	"contest-platform/internal/server/middleware"
	"contest-platform/tokenvalidator"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the operator surface. Every mutating handler acts as the
// configured platform owner; network-level authentication is expected to sit
// in front of this listener.
type Server struct {
	e       *echo.Echo
	owner   string
	factory *factory.Factory
	fees    *feemanager.Manager
	tokens  *tokenvalidator.Validator
}

func NewServer(
	owner string,
	f *factory.Factory,
	fees *feemanager.Manager,
	tokens *tokenvalidator.Validator) *Server {
	e := echo.New()
	s := &Server{
		e:       e,
		owner:   owner,
		factory: f,
		fees:    fees,
		tokens:  tokens,
	}

	e.Use(middleware.LoggingMiddleware)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	g := e.Group("/admin/v1/")

	g.POST("emergency-stop", s.setEmergencyStop)
	g.GET("contests/:id/emergency-info", s.getEmergencyInfo)
	g.POST("contests/:id/emergency-withdraw", s.emergencyWithdraw)

	g.POST("creators/:address/ban", s.banCreator)
	g.POST("creators/:address/unban", s.unbanCreator)

	g.PUT("networks/:id/fee", s.setNetworkFee)
	g.GET("fees/:asset", s.getAvailableFees)
	g.POST("fees/:asset/withdraw", s.withdrawFees)

	g.POST("tokens", s.registerToken)
	g.DELETE("tokens/:asset", s.removeToken)
	g.POST("tokens/:asset/deny", s.denyToken)
	g.POST("tokens/:asset/allow", s.allowToken)

	g.POST("factory/recover", s.recoverFactoryFunds)

	return s
}

func (s *Server) Start(addr string) {
	go s.e.Start(addr)
}
