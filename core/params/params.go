package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type QueryParams struct {
	PageNumber int
	PageSize   int
}

func NewQueryParams(c echo.Context) QueryParams {
	q := QueryParams{PageNumber: 1, PageSize: defaultPageSize}
	if v, err := strconv.Atoi(c.QueryParam("page_number")); err == nil && v > 0 {
		q.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		q.PageSize = min(v, maxPageSize)
	}
	return q
}

func (q QueryParams) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}
