package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "marketplace-backend/internal/service/user"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User        interface{} `json:"user"`
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int         `json:"expiresIn"`
}

func signupHandler(users AuthService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in usersvc.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		user, err := users.Signup(c.Request.Context(), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func loginHandler(users AuthService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}
		user, token, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, loginResponse{
			User:        user,
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   users.AccessTTLSeconds(),
		})
	}
}
