package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/identity"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// Cookies used to carry OAuth flow state between begin and callback.
const (
	oauthStateCookie    = "heracles-oauth-state"
	oauthRedirectCookie = "heracles-oauth-redirect"
	oauthStateMaxAge    = 600
)

// Provider endpoints. The user endpoints return the provider's account id,
// which is what heracles links against.
const (
	githubAuthURL      = "https://github.com/login/oauth/authorize"
	githubTokenURL     = "https://github.com/login/oauth/access_token"
	githubUserEndpoint = "https://api.github.com/user"

	discordAuthURL      = "https://discord.com/api/oauth2/authorize"
	discordTokenURL     = "https://discord.com/api/oauth2/token"
	discordUserEndpoint = "https://discord.com/api/v10/users/@me"
)

// oauthProvider bundles one configured identity provider.
type oauthProvider struct {
	settings config.OAuthProvider
	oauth    *oauth2.Config

	// fetchUser resolves the provider account id and login name from an
	// exchanged token.
	fetchUser func(ctx context.Context, client *http.Client) (int64, string, error)

	// linkColumn is the users column holding the provider account id.
	linkColumn string
}

// OAuthHandler serves the GitHub and Discord login flows. Accounts are
// matched by provider id; providers with allow-signup provision
// passwordless users on first login.
type OAuthHandler struct {
	db        *gorm.DB
	cfg       config.Config
	providers map[string]*oauthProvider
}

// NewOAuthHandler constructs an OAuthHandler with every enabled provider.
func NewOAuthHandler(db *gorm.DB, cfg config.Config) *OAuthHandler {
	h := &OAuthHandler{db: db, cfg: cfg, providers: map[string]*oauthProvider{}}

	if cfg.Github.Enabled() {
		h.providers["github"] = &oauthProvider{
			settings: cfg.Github,
			oauth: &oauth2.Config{
				ClientID:     cfg.Github.ClientID,
				ClientSecret: cfg.Github.ClientSecret,
				RedirectURL:  cfg.Github.RedirectURL,
				Endpoint:     oauth2.Endpoint{AuthURL: githubAuthURL, TokenURL: githubTokenURL},
				Scopes:       []string{"read:user"},
			},
			fetchUser:  fetchGithubUser,
			linkColumn: "github_id",
		}
	}

	if cfg.Discord.Enabled() {
		h.providers["discord"] = &oauthProvider{
			settings: cfg.Discord,
			oauth: &oauth2.Config{
				ClientID:     cfg.Discord.ClientID,
				ClientSecret: cfg.Discord.ClientSecret,
				RedirectURL:  cfg.Discord.RedirectURL,
				Endpoint:     oauth2.Endpoint{AuthURL: discordAuthURL, TokenURL: discordTokenURL},
				Scopes:       []string{"identify"},
			},
			fetchUser:  fetchDiscordUser,
			linkColumn: "discord_id",
		}
	}

	return h
}

// Begin redirects the client to the provider's consent page with a fresh
// state value pinned in a short-lived cookie.
func (h *OAuthHandler) Begin(c *gin.Context) {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	state, errState := security.GenerateSessionID()
	if errState != nil {
		log.WithError(errState).Error("failed to generate oauth state")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "oauth begin failed"})
		return
	}

	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", false, true)
	if redirect := strings.TrimSpace(c.Query("r")); redirect != "" {
		c.SetCookie(oauthRedirectCookie, redirect, oauthStateMaxAge, "/", "", false, true)
	}

	c.Redirect(http.StatusTemporaryRedirect, provider.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// Callback exchanges the authorization code, resolves or provisions the
// linked user, and issues a normal session.
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	stateCookie, errCookie := c.Cookie(oauthStateCookie)
	if errCookie != nil || stateCookie == "" || c.Query("state") != stateCookie {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	if errMessage := c.Query("error"); errMessage != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMessage})
		return
	}

	ctx := c.Request.Context()
	token, errExchange := provider.oauth.Exchange(ctx, c.Query("code"))
	if errExchange != nil {
		log.WithError(errExchange).Warn("oauth code exchange failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "code exchange failed"})
		return
	}

	client := provider.oauth.Client(ctx, token)
	client.Timeout = 10 * time.Second

	providerID, login, errFetch := provider.fetchUser(ctx, client)
	if errFetch != nil {
		log.WithError(errFetch).Warn("oauth user fetch failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "user fetch failed"})
		return
	}

	user, errResolve := h.resolveLinkedUser(ctx, provider, providerID, login)
	if errResolve != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no linked account"})
		return
	}

	cookieValue, errIssue := identity.IssueSession(ctx, h.db, h.cfg.Session, user.ID)
	if errIssue != nil {
		log.WithError(errIssue).Error("failed to issue session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}
	c.SetCookie(AuthCookieName, cookieValue, int(h.cfg.Session.Expiry.Seconds()), "/", "", false, true)

	if redirect, errRedirect := c.Cookie(oauthRedirectCookie); errRedirect == nil && redirect != "" {
		c.SetCookie(oauthRedirectCookie, "", -1, "/", "", false, true)
		c.Redirect(http.StatusFound, redirect)
		return
	}
	c.Status(http.StatusNoContent)
}

// resolveLinkedUser finds the user linked to the provider account, or
// provisions a passwordless one when the provider allows signup.
func (h *OAuthHandler) resolveLinkedUser(ctx context.Context, provider *oauthProvider, providerID int64, login string) (*models.User, error) {
	var user models.User
	errFind := h.db.WithContext(ctx).
		Where(provider.linkColumn+" = ?", providerID).
		First(&user).Error
	if errFind == nil {
		return &user, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) || !provider.settings.AllowSignup {
		return nil, identity.ErrUnauthenticated
	}

	user = models.User{Username: login}
	switch provider.linkColumn {
	case "github_id":
		user.GithubID = &providerID
	case "discord_id":
		user.DiscordID = &providerID
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		log.WithError(errCreate).Warn("oauth signup failed")
		return nil, identity.ErrUnauthenticated
	}
	return &user, nil
}

func fetchGithubUser(ctx context.Context, client *http.Client) (int64, string, error) {
	// payload maps the fields heracles needs from the GitHub user object.
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	}
	if err := fetchJSON(ctx, client, githubUserEndpoint, &payload); err != nil {
		return 0, "", err
	}
	return payload.ID, payload.Login, nil
}

func fetchDiscordUser(ctx context.Context, client *http.Client) (int64, string, error) {
	// payload maps the fields heracles needs from the Discord user object.
	// Discord serializes snowflake ids as strings.
	var payload struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := fetchJSON(ctx, client, discordUserEndpoint, &payload); err != nil {
		return 0, "", err
	}
	id, errParse := strconv.ParseInt(payload.ID, 10, 64)
	if errParse != nil {
		return 0, "", errParse
	}
	return id, payload.Username, nil
}

func fetchJSON(ctx context.Context, client *http.Client, endpoint string, target any) error {
	req, errRequest := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if errRequest != nil {
		return errRequest
	}
	res, errDo := client.Do(req)
	if errDo != nil {
		return errDo
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return errors.New("unexpected status " + res.Status)
	}
	return json.NewDecoder(res.Body).Decode(target)
}
