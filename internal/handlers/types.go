package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

func successMessage(message string) Response {
	return Response{Status: "success", Message: message}
}

// pagination extracts page/limit query params with the defaults every list
// endpoint shares.
func pagination(c echo.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

// idParam parses the named numeric path parameter.
func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(400, "invalid "+name)
	}
	return uint(id), nil
}
