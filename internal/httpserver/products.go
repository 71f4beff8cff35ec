package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	productsvc "marketplace-backend/internal/service/product"
)

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func listProductsHandler(products ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := products.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": out, "total": len(out)})
	}
}

func getProductHandler(products ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func createProductHandler(products ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		product, err := products.Create(c.Request.Context(), currentUser(c), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func updateProductHandler(products ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		product, err := products.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func adjustStockHandler(products ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adjustStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		product, err := products.AdjustStock(c.Request.Context(), currentUser(c), c.Param("id"), req.Delta)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
