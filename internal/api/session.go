package api

import (
	"context"

	"github.com/remails/console/model"
)

// LoginResult is the response to a password login. When the account has
// two-factor enabled, Token is empty and TwoFactorToken must be exchanged
// together with a TOTP code.
type LoginResult struct {
	Token             string `json:"token,omitempty"`
	TwoFactorRequired bool   `json:"two_factor_required,omitempty"`
	TwoFactorToken    string `json:"two_factor_token,omitempty"`
}

// TwoFactorEnrollment is the server-generated TOTP enrollment material.
type TwoFactorEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// WhoAmI returns the user the session token belongs to. A 401 surfaces as
// an UNAUTHORIZED error, which the session loader turns into a login
// redirect.
func (c *Client) WhoAmI(ctx context.Context, sess *model.Session) (model.User, error) {
	var user model.User
	err := c.get(ctx, sess, "/api/whoami", nil, &user)
	return user, err
}

// Login exchanges credentials for a session token, or for a two-factor
// challenge when 2FA is enabled on the account.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	err := c.post(ctx, nil, "/api/login", body, &result)
	return result, err
}

// LoginTOTP completes a two-factor login with the code from the user's
// authenticator app.
func (c *Client) LoginTOTP(ctx context.Context, twoFactorToken, code string) (LoginResult, error) {
	var result LoginResult
	body := map[string]string{"two_factor_token": twoFactorToken, "code": code}
	err := c.post(ctx, nil, "/api/login/totp", body, &result)
	return result, err
}

// Logout invalidates the session token server-side.
func (c *Client) Logout(ctx context.Context, sess *model.Session) error {
	return c.post(ctx, sess, "/api/logout", nil, nil)
}

// EnrollTwoFactor starts TOTP enrollment for the current user.
func (c *Client) EnrollTwoFactor(ctx context.Context, sess *model.Session) (TwoFactorEnrollment, error) {
	var enrollment TwoFactorEnrollment
	err := c.post(ctx, sess, "/api/settings/2fa", nil, &enrollment)
	return enrollment, err
}

// ConfirmTwoFactor finishes TOTP enrollment by verifying one code.
func (c *Client) ConfirmTwoFactor(ctx context.Context, sess *model.Session, code string) error {
	body := map[string]string{"code": code}
	return c.post(ctx, sess, "/api/settings/2fa/confirm", body, nil)
}

// ServerConfig fetches platform-wide configuration for the console.
func (c *Client) ServerConfig(ctx context.Context, sess *model.Session) (model.ServerConfig, error) {
	var cfg model.ServerConfig
	err := c.get(ctx, sess, "/api/config", nil, &cfg)
	return cfg, err
}
