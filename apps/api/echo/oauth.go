package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/user"
)

type googleOAuth struct {
	svc   *user.Service
	conf  *core.Config
	oauth *oauth2.Config
}

func registerGoogleOAuth(g *echo.Group, svc *user.Service, conf *core.Config) {
	api := googleOAuth{
		svc:  svc,
		conf: conf,
		oauth: &oauth2.Config{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RedirectURL:  conf.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
	g.GET("/oauth/google", api.redirect)
	g.GET("/oauth/google/callback", api.callback)
}

func (api *googleOAuth) redirect(ctx echo.Context) error {
	state := core.RandomString(32)
	cookie := &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
	}
	ctx.SetCookie(cookie)
	return ctx.Redirect(http.StatusTemporaryRedirect, api.oauth.AuthCodeURL(state))
}

func (api *googleOAuth) callback(ctx echo.Context) error {
	cookie, err := ctx.Cookie("oauthstate")
	if err != nil || ctx.QueryParam("state") != cookie.Value {
		return errAuthenticationFailed
	}

	reqCtx := ctx.Request().Context()
	token, err := api.oauth.Exchange(reqCtx, ctx.QueryParam("code"))
	if err != nil {
		return errAuthenticationFailed
	}

	info, err := api.fetchUserInfo(ctx, token)
	if err != nil {
		return errors.Wrap(err, "fetching google user info")
	}

	usr, err := api.svc.GetOrCreateOAuthUser(reqCtx, info.Sub, info.Email, info.Name)
	if err != nil {
		return errors.Wrap(err, "resolving oauth user")
	}
	if !usr.IsActive {
		return errAccountDeactivated
	}
	if usr, err = api.svc.SetLastLogin(reqCtx, usr); err != nil {
		return errors.Wrap(err, "setting lastLogin")
	}

	jwtToken, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: jwtToken})
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (api *googleOAuth) fetchUserInfo(ctx echo.Context, token *oauth2.Token) (googleUserInfo, error) {
	var info googleUserInfo

	client := api.oauth.Client(ctx.Request().Context(), token)
	res, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		return info, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return info, errors.Errorf("userinfo endpoint returned %d", res.StatusCode)
	}
	err = json.NewDecoder(res.Body).Decode(&info)
	return info, err
}
