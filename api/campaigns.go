// Package api
package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/handler"
	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/utils"
)

type ICampaign interface {
	Campaigns(c echo.Context) error
	Campaign(c echo.Context) error
	CampaignDonations(c echo.Context) error
	Donate(c echo.Context) error
}

func bindCampaignAPIs(gr *echo.Group, srv RestServer) {
	apis := []restDefinition{
		{
			method: echo.GET,
			path:   "/campaigns",
			fn:     srv.Campaigns,
		},
		{
			method:      echo.GET,
			path:        "/campaigns/:id",
			fn:          srv.Campaign,
			middlewares: []echo.MiddlewareFunc{checkCampaignID()},
		},
		{
			method:      echo.GET,
			path:        "/campaigns/:id/donations",
			fn:          srv.CampaignDonations,
			middlewares: []echo.MiddlewareFunc{checkCampaignID()},
		},
		{
			method: echo.POST,
			// Body: {"amount": "0.5"}
			path:        "/campaigns/:id/donations",
			fn:          srv.Donate,
			middlewares: []echo.MiddlewareFunc{checkCampaignID()},
		},
	}
	for _, api := range apis {
		gr.Add(api.method, api.path, api.fn, api.middlewares...)
	}
}

func checkCampaignID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := strconv.ParseUint(c.Param("id"), 10, 64); err != nil {
				return Invalid.SetMsg(types.ErrInvalidCampaignID.Error()).Build(c)
			}
			return next(c)
		}
	}
}

func campaignID(c echo.Context) uint64 {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return id
}

// Campaigns lists campaigns, optionally filtered by ?owner= and
// ?status=active|expired. With ?page= or ?limit= the list is paged.
func (s *Server) Campaigns(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	pagination, page, limit := getPagingOption(c)
	filter := types.CampaignsFilter{
		Pagination: pagination,
		Owner:      c.QueryParam("owner"),
		Status:     types.CampaignStatus(c.QueryParam("status")),
	}
	if filter.Owner != "" && !utils.IsValidAddress(filter.Owner) {
		return Invalid.SetMsg("invalid owner address").Build(c)
	}
	switch filter.Status {
	case "", types.CampaignActive, types.CampaignExpired:
	default:
		return Invalid.SetMsg("invalid status").Build(c)
	}

	campaigns, err := s.handler.Campaigns(ctx)
	if err != nil {
		s.logger.Warn("cannot load campaigns", zap.Error(err))
		return Unavailable.Build(c)
	}
	campaigns = handler.FilterCampaigns(campaigns, filter)
	if pagination == nil {
		return OK.SetData(campaigns).Build(c)
	}
	start, end := pagination.Window(len(campaigns))
	return OK.SetData(PagingResponse{
		Page:  page,
		Limit: limit,
		Total: uint64(len(campaigns)),
		Data:  campaigns[start:end],
	}).Build(c)
}

func (s *Server) Campaign(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	campaign, err := s.handler.Campaign(ctx, campaignID(c))
	if err != nil {
		return s.lookupError(c, err)
	}
	return OK.SetData(campaign).Build(c)
}

func (s *Server) CampaignDonations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.requestTimeout)
	defer cancel()
	donations, err := s.handler.Donations(ctx, campaignID(c))
	if err != nil {
		return s.lookupError(c, err)
	}
	if donations == nil {
		donations = []*types.Donation{}
	}
	return OK.SetData(donations).Build(c)
}

func (s *Server) Donate(c echo.Context) error {
	type donateRequest struct {
		Amount string `json:"amount"`
	}
	var req donateRequest
	if err := c.Bind(&req); err != nil {
		return Invalid.SetMsg(err.Error()).Build(c)
	}
	result := s.handler.Donate(c.Request().Context(), campaignID(c), req.Amount)
	if result.Err == nil {
		return OK.SetData(result).Build(c)
	}
	if errors.Is(result.Err, types.ErrCampaignNotFound) {
		return NotFound.SetData(result).Build(c)
	}
	return errorResponse(result.Err).SetData(result).Build(c)
}

func (s *Server) lookupError(c echo.Context, err error) error {
	if errors.Is(err, types.ErrCampaignNotFound) {
		return NotFound.SetMsg("Campaign not found").Build(c)
	}
	s.logger.Warn("cannot load campaign", zap.Error(err))
	return Unavailable.Build(c)
}
