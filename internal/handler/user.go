package handler

import (
	"net/http"
	"time"

	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/pkg/httputils"
	"tush00nka/chathub/internal/service"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService service.UserService
	tokenTTL    time.Duration
	secure      bool
}

func NewUserHandler(userService service.UserService, tokenTTL time.Duration, secureCookies bool) *UserHandler {
	return &UserHandler{userService: userService, tokenTTL: tokenTTL, secure: secureCookies}
}

func (c *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/register", c.registerUser).Methods("POST", "OPTIONS")
	router.HandleFunc("/users/login", c.loginUser).Methods("POST", "OPTIONS")
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// @Summary Register
// @Description Register an account
// @ID register
// @Tags users
// @Accept json
// @Produce json
// @Param registerData body RegisterRequest true "Register data"
// @Success 201 {object} response.DataResponse{data=service.AuthResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/register [post]
func (c *UserHandler) registerUser(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	result, err := c.userService.Register(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	c.setTokenCookie(w, result.AccessToken)
	httputils.ResponseData(w, http.StatusCreated, result, "Users registered successfully")
}

// @Summary Login
// @Description Log in and receive an access token
// @ID login
// @Tags users
// @Accept json
// @Produce json
// @Param loginData body LoginRequest true "Login data"
// @Success 200 {object} response.DataResponse{data=service.AuthResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /users/login [post]
func (c *UserHandler) loginUser(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	result, err := c.userService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	c.setTokenCookie(w, result.AccessToken)
	httputils.ResponseData(w, http.StatusOK, result, "User logged in successfully")
}

func (c *UserHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(c.tokenTTL),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
