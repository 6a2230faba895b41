package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
	"github.com/joshua-takyi/tripbay/internal/store"
)

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		authResponse, err := u.AuthenticateUser(req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid email or password"))
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"

		if tokenRes, ok := authResponse.(*types.TokenResponse); ok && tokenRes.AccessToken != "" {
			// Access token lifetime comes from the auth backend; refresh
			// token is kept for 30 days.
			c.SetCookie(
				"access_token",
				tokenRes.AccessToken,
				tokenRes.ExpiresIn,
				"/",
				"",
				isProduction,
				true,
			)
			c.SetCookie(
				"refresh_token",
				tokenRes.RefreshToken,
				3600*24*30,
				"/",
				"",
				isProduction,
				true,
			)

			// Return user info but not tokens
			c.JSON(http.StatusOK, gin.H{
				"user": tokenRes.User,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid token response"))
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := os.Getenv("GIN_MODE") == "production"

		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}

// VerifyOTP confirms the emailed verification code and flips the profile
// to verified.
func VerifyOTP(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
			Code  string `json:"code" binding:"required,len=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		if err := u.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
			switch {
			case errors.Is(err, store.ErrOTPNotFound):
				c.JSON(http.StatusGone, models.ErrorResponse("verification code expired, request a new one"))
			case errors.Is(err, store.ErrOTPMismatch):
				c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse("incorrect verification code"))
			case errors.Is(err, store.ErrOTPTooManyTries):
				c.JSON(http.StatusTooManyRequests, models.ErrorResponse("too many attempts, request a new code"))
			default:
				c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			}
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Email verified"))
	}
}

// ResendOTP issues a fresh verification code, superseding any earlier one.
func ResendOTP(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
			Name  string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		if err := u.SendOTP(c.Request.Context(), req.Email, req.Name); err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse("could not send verification code"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Verification code sent"))
	}
}
