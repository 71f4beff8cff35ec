package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "marketplace-backend/internal/service/order"
)

func listOrdersHandler(orders OrderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := orders.List(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": out, "total": len(out)})
	}
}

func getOrderHandler(orders OrderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Get(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func checkoutHandler(orders OrderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CheckoutInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.Checkout(c.Request.Context(), currentUser(c), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func updateOrderStatusHandler(orders OrderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.StatusPatch
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func cancelOrderHandler(orders OrderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Cancel(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
