package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
)

type authApi struct {
	deps *Deps
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	jg := ag.Group("", jwt)
	jg.POST("/register/staff", api.registerStaff, adminMiddleware())
	jg.POST("/push-token", api.savePushToken)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.deps)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: claims.Role})
}

// register signs a new parent account up. Staff accounts are only ever
// created through the admin-gated endpoint or the admin CLI.
func (api *authApi) register(ctx echo.Context) error {
	var data account.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if data.Role == "" {
		data.Role = account.RoleParent
	}
	if data.Role != account.RoleParent {
		return errHttpForbidden
	}

	id, err := api.deps.AccountSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering parent")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{ID: id})
}

func (api *authApi) registerStaff(ctx echo.Context) error {
	var data account.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if data.Role == "" {
		data.Role = account.RoleStaff
	}

	id, err := api.deps.AccountSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering staff")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{ID: id})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.deps.AccountSvc.ResetPassword(ctx.Request().Context(), data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data PasswordResetConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetConfirmRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.deps.Identity.CompleteReset(ctx.Request().Context(), data.Token, data.Password); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *authApi) savePushToken(ctx echo.Context) error {
	var data PushTokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PushTokenRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	_, claims, err := contextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.AccountSvc.SavePushToken(ctx.Request().Context(), claims.Subject, claims.role(), data.Token); err != nil {
		return errors.Wrap(err, "saving push token")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	RegisterResponse struct {
		ID string `json:"id"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	PasswordResetConfirmRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	PushTokenRequest struct {
		Token string `json:"token" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

func (pr *PasswordResetConfirmRequest) Validate() error {
	return core.Validate.Struct(pr)
}

func (pt *PushTokenRequest) Validate() error {
	pt.Token = core.CleanString(pt.Token)
	return core.Validate.Struct(pt)
}
