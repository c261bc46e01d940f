package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/app/services"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/middleware"
	"github.com/shashiranjanraj/sampleapp/pkg/response"
	"github.com/shashiranjanraj/sampleapp/pkg/validate"
)

type AuthController struct {
	service *services.AuthService
	users   *repositories.UserRepository
}

func NewAuthController(service *services.AuthService, users *repositories.UserRepository) *AuthController {
	return &AuthController{service: service, users: users}
}

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Register creates a user account.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		fault.Pass(w, r, err)
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		fault.Pass(w, r, fault.Validation(errs))
		return
	}

	user, err := c.service.Register(r.Context(), in.Name, in.Email, in.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		fault.Pass(w, r, fault.Validation(map[string]string{"email": "The email has already been taken."}))
		return
	}
	if err != nil {
		fault.Pass(w, r, err)
		return
	}
	response.Created(w, user)
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := middleware.DecodeJSON(r, &in); err != nil {
		fault.Pass(w, r, err)
		return
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		fault.Pass(w, r, fault.Validation(errs))
		return
	}

	token, err := c.service.Login(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		fault.Pass(w, r, fault.Unauthorized("Invalid credentials"))
		return
	}
	if err != nil {
		fault.Pass(w, r, err)
		return
	}
	response.Success(w, map[string]string{"token": token})
}

// Profile returns the authenticated user.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromCtx(r.Context())
	if err != nil {
		fault.Pass(w, r, fault.Wrap(http.StatusUnauthorized, "Unauthorized", err))
		return
	}

	user, err := c.users.FindByID(r.Context(), claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		fault.Pass(w, r, fault.NotFound("User not found"))
		return
	}
	if err != nil {
		fault.Pass(w, r, err)
		return
	}
	response.Success(w, user)
}
