package public

import (
	"net/http"

	"contest-platform/badges"
	"contest-platform/events"
	"contest-platform/factory"
	"contest-platform/feemanager"
	"contest-platform/internal/server/middleware"
	"contest-platform/tokenvalidator"

	"github.com/labstack/echo/v4"
)

type Server struct {
	e        *echo.Echo
	factory  *factory.Factory
	fees     *feemanager.Manager
	tokens   *tokenvalidator.Validator
	badges   *badges.Tracker
	recorder *events.Recorder
}

func NewServer(
	f *factory.Factory,
	fees *feemanager.Manager,
	tokens *tokenvalidator.Validator,
	badgeTracker *badges.Tracker,
	recorder *events.Recorder) *Server {
	e := echo.New()
	s := &Server{
		e:        e,
		factory:  f,
		fees:     fees,
		tokens:   tokens,
		badges:   badgeTracker,
		recorder: recorder,
	}

	e.Use(middleware.LoggingMiddleware)
	g := e.Group("/v1/")

	g.GET("status", s.getStatus)

	g.POST("contests", s.createContest)
	g.GET("contests", s.getContests)
	g.GET("contests/:id", s.getContestById)
	g.GET("contests/:id/distribution", s.getContestDistribution)
	g.GET("contests/:id/winners", s.getContestWinners)
	g.POST("contests/:id/winners", s.declareWinners)
	g.POST("contests/:id/claims", s.claimPrize)
	g.POST("contests/:id/cancel", s.cancelContest)

	g.GET("tokens", s.getTokens)
	g.GET("tokens/:asset", s.getTokenByAsset)
	g.GET("networks/:id/fee", s.getNetworkFee)

	g.GET("creators/:address/badges", s.getCreatorBadges)
	g.GET("creators/:address/stats", s.getCreatorStats)

	g.GET("events", s.streamEvents)

	return s
}

func (s *Server) Start(addr string) {
	go s.e.Start(addr)
}

func (s *Server) getStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, struct {
		Status   string `json:"status"`
		Contests int    `json:"contests"`
	}{Status: "ok", Contests: s.factory.EscrowsCount()})
}
