// Package api
package api

import (
	"strconv"

	"github.com/labstack/echo"

	"github.com/kardiachain/crowdfund-backend/types"
)

type PagingResponse struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total uint64      `json:"total"`
	Data  interface{} `json:"data"`
}

func getPagingOption(c echo.Context) (*types.Pagination, int, int) {
	pageParams := c.QueryParam("page")
	limitParams := c.QueryParam("limit")
	if pageParams == "" && limitParams == "" {
		return nil, 0, 0
	}
	page, err := strconv.Atoi(pageParams)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitParams)
	if err != nil {
		limit = 0
	}
	pagination := &types.Pagination{
		Skip:  (page - 1) * limit,
		Limit: limit,
	}
	pagination.Sanitize()
	if pagination.Limit != limit {
		pagination.Skip = (page - 1) * pagination.Limit
	}
	return pagination, page, pagination.Limit
}
