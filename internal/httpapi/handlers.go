package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paycache/internal/payments"
)

// listParams mirrors the /payments query string. Paging bounds are enforced
// here so out-of-range values never reach the core.
type listParams struct {
	Date    string `form:"date"`
	Page    int    `form:"page,default=1" binding:"gte=1"`
	Limit   int    `form:"limit,default=10" binding:"gte=1,lte=100"`
	PSPName string `form:"psp_name"`
	Status  string `form:"status"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) handleList(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Detail: err.Error()})
		return
	}
	query := payments.Query{
		Date:    params.Date,
		PSPName: params.PSPName,
		Status:  params.Status,
	}
	page, err := s.service.ListPayments(c.Request.Context(), query, params.Page, params.Limit)
	if errors.Is(err, payments.ErrNoMoreRecords) {
		c.JSON(http.StatusNotFound, errorBody{Detail: "No more records"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleGet(c *gin.Context) {
	record, err := s.service.GetPayment(c.Request.Context(), c.Param("id"))
	if errors.Is(err, payments.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody{Detail: "Transaction not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": s.service.Store().Len(),
		"driver":  s.driver,
	})
}
