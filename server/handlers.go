package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/gamification"
)

func (s *Server) registerRoutes() {
	s.GET("/status", s.GetStatus)
	s.POST("/parse", s.ParsePrompt)
	s.POST("/ask", s.Ask)
	s.POST("/chat", s.Chat)
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		s.Add(m, "/user/profile", s.GetUserProfile)
		s.Add(m, "/user/achievements", s.GetUserAchievements)
		s.Add(m, "/user/quests", s.GetUserQuests)
		s.Add(m, "/user/activity", s.GetUserActivity)
	}
	s.POST("/launch-token", s.LaunchToken)
	s.POST("/buy-token", s.BuyToken)
	s.POST("/sell-token", s.SellToken)
}

func (s *Server) GetStatus(c echo.Context) error {
	resp := schema.GetStatusResponse{
		MongoDB:     "ok",
		LLMProvider: s.svc.LLMProvider,
	}
	if err := s.svc.DB.Ping(c.Request().Context()); err != nil {
		resp.MongoDB = err.Error()
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) ParsePrompt(c echo.Context) error {
	var req schema.ParseRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := s.svc.Classifier.Classify(c.Request().Context(), req.Prompt)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "LLM error: "+err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, schema.ParseResponse{
		Intent:   res.Intent,
		Entities: res.Entities,
		Raw:      res.Raw,
	})
}

func (s *Server) Ask(c echo.Context) error {
	var req schema.AskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	a, err := s.svc.RAG.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "RAG error: "+err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, schema.AskResponse{
		Answer: a.Answer,
		Raw:    a.Envelope(),
	})
}

func bindUserRequest(c echo.Context) (req schema.UserRequest, err error) {
	if err = c.Bind(&req); err != nil {
		return
	}
	switch {
	case req.Address == "":
		err = apperr.NewValidationError("address", "must be provided")
	case req.XP > gamification.MaxXP:
		err = apperr.NewValidationError("xp", "must not exceed %d", int64(gamification.MaxXP))
	}
	return
}

func (s *Server) GetUserProfile(c echo.Context) error {
	req, err := bindUserRequest(c)
	if err != nil {
		return err
	}
	p, err := s.svc.Gamification.Profile(c.Request().Context(), req.Address, req.XP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) GetUserAchievements(c echo.Context) error {
	req, err := bindUserRequest(c)
	if err != nil {
		return err
	}
	as, err := s.svc.Gamification.Achievements(c.Request().Context(), req.Address, req.XP)
	if err != nil {
		return err
	}
	if as == nil {
		as = []schema.Achievement{}
	}
	return c.JSON(http.StatusOK, as)
}

func (s *Server) GetUserQuests(c echo.Context) error {
	req, err := bindUserRequest(c)
	if err != nil {
		return err
	}
	qs, err := s.svc.Gamification.Quests(c.Request().Context(), req.Address, req.XP)
	if err != nil {
		return err
	}
	if qs == nil {
		qs = []schema.Quest{}
	}
	return c.JSON(http.StatusOK, qs)
}

func (s *Server) GetUserActivity(c echo.Context) error {
	req, err := bindUserRequest(c)
	if err != nil {
		return err
	}
	as, err := s.svc.Gamification.Activity(c.Request().Context(), req.Address, req.XP)
	if err != nil {
		return err
	}
	if as == nil {
		as = []schema.Activity{}
	}
	return c.JSON(http.StatusOK, as)
}

func (s *Server) LaunchToken(c echo.Context) error {
	var req schema.LaunchTokenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := s.svc.Launchpad.Launch(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) BuyToken(c echo.Context) error {
	var req schema.BuyTokenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := s.svc.Launchpad.Buy(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) SellToken(c echo.Context) error {
	var req schema.SellTokenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := s.svc.Launchpad.Sell(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
