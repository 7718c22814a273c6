// Package api
package api

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/handler"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/types"
)

type IDraft interface {
	NewDraft(c echo.Context) error
	Draft(c echo.Context) error
	UpdateDraft(c echo.Context) error
	ResetDraft(c echo.Context) error
	DraftEstimate(c echo.Context) error
	SubmitDraft(c echo.Context) error
}

func bindDraftAPIs(gr *echo.Group, srv RestServer) {
	apis := []restDefinition{
		{
			method: echo.POST,
			path:   "/drafts",
			fn:     srv.NewDraft,
		},
		{
			method:      echo.GET,
			path:        "/drafts/:session",
			fn:          srv.Draft,
			middlewares: []echo.MiddlewareFunc{checkSession()},
		},
		{
			method:      echo.PUT,
			path:        "/drafts/:session",
			fn:          srv.UpdateDraft,
			middlewares: []echo.MiddlewareFunc{checkSession()},
		},
		{
			method:      echo.DELETE,
			path:        "/drafts/:session",
			fn:          srv.ResetDraft,
			middlewares: []echo.MiddlewareFunc{checkSession()},
		},
		{
			method:      echo.GET,
			path:        "/drafts/:session/estimate",
			fn:          srv.DraftEstimate,
			middlewares: []echo.MiddlewareFunc{checkSession()},
		},
		{
			method: echo.POST,
			// Body: {"confirmSwitch": true}
			path:        "/drafts/:session/submit",
			fn:          srv.SubmitDraft,
			middlewares: []echo.MiddlewareFunc{checkSession()},
		},
	}
	for _, api := range apis {
		gr.Add(api.method, api.path, api.fn, api.middlewares...)
	}
}

func checkSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := uuid.Parse(c.Param("session")); err != nil {
				return Invalid.SetMsg("invalid session").Build(c)
			}
			return next(c)
		}
	}
}

type draftResponse struct {
	Session  string              `json:"session"`
	Draft    types.CampaignDraft `json:"draft"`
	Errors   types.FieldErrors   `json:"errors"`
	Step     types.ProgressStep  `json:"step"`
	StepName string              `json:"stepName"`
	State    types.CreationState `json:"state"`
	Busy     bool                `json:"busy"`
}

func (s *Server) draftResponse(ctx context.Context, creator *handler.CampaignCreator) *draftResponse {
	step := creator.Progress(ctx)
	return &draftResponse{
		Session:  creator.Session(),
		Draft:    creator.Draft(),
		Errors:   creator.FieldErrors(),
		Step:     step,
		StepName: step.String(),
		State:    creator.State(),
		Busy:     creator.Busy(),
	}
}

func (s *Server) NewDraft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	session := uuid.NewString()
	creator := s.handler.OpenDraft(ctx, session)
	s.logger.Debug("New draft session", zap.String("session", session))
	return OK.SetData(s.draftResponse(ctx, creator)).Build(c)
}

func (s *Server) Draft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	creator, err := s.handler.ResumeDraft(ctx, c.Param("session"))
	if err != nil {
		return s.sessionError(c, err)
	}
	return OK.SetData(s.draftResponse(ctx, creator)).Build(c)
}

func (s *Server) UpdateDraft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	var draft types.CampaignDraft
	if err := c.Bind(&draft); err != nil {
		return Invalid.SetMsg(err.Error()).Build(c)
	}
	creator, err := s.handler.ResumeDraft(ctx, c.Param("session"))
	if err != nil {
		return s.sessionError(c, err)
	}
	creator.Change(ctx, draft)
	return OK.SetData(s.draftResponse(ctx, creator)).Build(c)
}

func (s *Server) ResetDraft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	creator, err := s.handler.ResumeDraft(ctx, c.Param("session"))
	if err != nil {
		return s.sessionError(c, err)
	}
	if err := creator.Reset(ctx); err != nil {
		s.logger.Warn("cannot reset draft", zap.String("session", creator.Session()), zap.Error(err))
		return InternalServer.Build(c)
	}
	return OK.SetData(s.draftResponse(ctx, creator)).Build(c)
}

func (s *Server) DraftEstimate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	creator, err := s.handler.ResumeDraft(ctx, c.Param("session"))
	if err != nil {
		return s.sessionError(c, err)
	}
	type estimateResponse struct {
		Estimate types.GasEstimate `json:"estimate"`
		Display  string            `json:"display"`
	}
	estimate := creator.Estimate()
	return OK.SetData(&estimateResponse{Estimate: estimate, Display: estimate.String()}).Build(c)
}

func (s *Server) SubmitDraft(c echo.Context) error {
	type submitRequest struct {
		ConfirmSwitch bool `json:"confirmSwitch"`
	}
	var req submitRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return Invalid.SetMsg(err.Error()).Build(c)
		}
	}
	// Submission outlives a dropped connection; the handler detaches the
	// ledger call itself.
	ctx := c.Request().Context()
	creator, err := s.handler.ResumeDraft(ctx, c.Param("session"))
	if err != nil {
		return s.sessionError(c, err)
	}
	confirmer := network.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		s.logger.Info("Network switch requested", zap.String("prompt", prompt), zap.Bool("confirmed", req.ConfirmSwitch))
		return req.ConfirmSwitch
	})

	result := creator.Submit(ctx, confirmer)
	if result.Err == nil {
		return OK.SetData(result).Build(c)
	}
	return errorResponse(result.Err).SetData(result).Build(c)
}

func (s *Server) sessionError(c echo.Context, err error) error {
	if errors.Is(err, types.ErrSessionNotFound) {
		return NotFound.SetMsg("Draft session not found").Build(c)
	}
	s.logger.Warn("cannot resume draft", zap.Error(err))
	return InternalServer.Build(c)
}

// errorResponse picks the envelope for a workflow failure.
func errorResponse(txErr *types.TxError) EchoResponse {
	var r EchoResponse
	switch txErr.Kind {
	case types.KindValidation:
		r = Invalid
	case types.KindBusy:
		r = Conflict
	case types.KindContractUnavailable:
		r = Unavailable
	default:
		r = Unprocessable
	}
	r.Msg = txErr.Message
	return r
}
