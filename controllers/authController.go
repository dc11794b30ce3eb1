package controllers

import (
	"net/http"

	"civicfix-be/config"
	"civicfix-be/middlewares"
	"civicfix-be/repository"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
	app  config.AppConfig
}

func NewAuthController(auth *services.AuthService, app config.AppConfig) *AuthController {
	return &AuthController{auth: auth, app: app}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Location string `json:"location" binding:"max=200"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=50"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.RespondError(c, utils.NewValidationError("Invalid request body", middlewares.ValidationDetails(err)))
		return
	}

	session, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Location: input.Location,
	})
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	ac.setCookie(c, session.Token)
	c.JSON(http.StatusCreated, gin.H{"token": session.Token, "user": session.User})
}

// Login handles user login
func (ac *AuthController) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.RespondError(c, utils.NewValidationError("Invalid request body", middlewares.ValidationDetails(err)))
		return
	}

	session, err := ac.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	ac.setCookie(c, session.Token)
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "user": session.User})
}

// Me retrieves the authenticated user's information
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.Me(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var input profileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.RespondError(c, utils.NewValidationError("Invalid request body", middlewares.ValidationDetails(err)))
		return
	}

	user, err := ac.auth.UpdateProfile(c.Request.Context(), middlewares.CurrentUserID(c), repository.ProfileUpdate{
		Name:     input.Name,
		Bio:      input.Bio,
		Location: input.Location,
		Phone:    input.Phone,
	})
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout revokes the caller's token and clears the auth_token cookie
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), middlewares.CurrentClaims(c)); err != nil {
		middlewares.RespondError(c, err)
		return
	}

	c.SetCookie(middlewares.AuthCookie, "", -1, "/", ac.cookieDomain(), ac.app.Production(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// For production, don't set domain to allow cross-origin cookies
func (ac *AuthController) cookieDomain() string {
	if ac.app.Production() {
		return ""
	}
	return ac.app.Domain
}

func (ac *AuthController) setCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    token,
		MaxAge:   int(ac.auth.TokenTTL().Seconds()),
		Path:     "/",
		Domain:   ac.cookieDomain(),
		Secure:   ac.app.Production(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode, // Required for cross-origin cookies in production
	})
}
