// Package portal drives the yard-management web application: landing-page
// session setup with security-token extraction, yard switching, and the
// yard-state snapshot call.
package portal

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/fetcher"
	"github.com/sells-group/yardops-cli/internal/snapshot"
)

// ErrTokenMissing indicates the landing page came back without an
// embedded security token. Treated like a transport failure by the
// acquisition cycle.
var ErrTokenMissing = eris.New("portal: security token not found in landing page")

// tokenPattern matches the security token embedded in the landing page body.
var tokenPattern = regexp.MustCompile(`window\.ymsSecurityToken\s*=\s*"([^"]+)"`)

// Client issues portal operations. One Client is safe for concurrent use;
// each Session it opens is a separate authenticated cookie scope.
type Client struct {
	cfg   config.PortalConfig
	sites config.SitesConfig
}

// Session is one authenticated portal session with its security token.
type Session struct {
	http  *fetcher.Client
	token string
}

// Token returns the security token extracted at session open.
func (s *Session) Token() string {
	return s.token
}

// New creates a portal client.
func New(cfg config.PortalConfig, sites config.SitesConfig) *Client {
	return &Client{cfg: cfg, sites: sites}
}

func (c *Client) landingHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}

// OpenSession opens a fresh session against the portal landing page and
// extracts the security token from the page body.
func (c *Client) OpenSession(ctx context.Context) (*Session, error) {
	httpClient, err := fetcher.NewClient(fetcher.Options{
		UserAgent: c.cfg.UserAgent,
		Timeout:   time.Duration(c.cfg.TimeoutSecs) * time.Second,
		RateLimiters: map[string]*rate.Limiter{
			// The portal throttles aggressively; stay well under it.
			hostOf(c.cfg.BaseURL): rate.NewLimiter(2, 4),
		},
	})
	if err != nil {
		return nil, err
	}

	body, err := httpClient.GetString(ctx, c.cfg.BaseURL+c.cfg.LandingPath, c.landingHeaders())
	if err != nil {
		return nil, eris.Wrap(err, "portal: fetch landing page")
	}

	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, ErrTokenMissing
	}
	zap.L().Info("portal: session opened, security token extracted")

	return &Session{http: httpClient, token: m[1]}, nil
}

// SwitchYard points the session's active account at the given site's
// routing target. The portal acknowledges asynchronously, so callers
// treat failures here as best-effort and let snapshot validation catch a
// switch that did not take.
func (c *Client) SwitchYard(ctx context.Context, s *Session, site string) error {
	accountID, ok := c.sites.RoutingTarget(site)
	if !ok {
		return eris.Errorf("portal: site %q not found in routing maps", site)
	}

	// Cache-buster timestamp, same as the web UI sends.
	u := fmt.Sprintf("%s/transcore/putData?operation=setActiveAccount&accountId=%s&_=%d",
		c.cfg.BaseURL, accountID, time.Now().UnixMilli())

	resp, err := s.http.Get(ctx, u, c.landingHeaders())
	if err != nil {
		return eris.Wrapf(err, "portal: switch yard %s", site)
	}
	defer resp.Body.Close() //nolint:errcheck

	zap.L().Info("portal: switch yard requested",
		zap.String("site", site),
		zap.String("account_id", accountID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

// YardState fetches the yard-state snapshot for the session's active yard.
func (c *Client) YardState(ctx context.Context, s *Session) (snapshot.Node, error) {
	headers := map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.5",
		"api":             "getYardStateWithPendingMoves",
		"method":          "POST",
		"token":           s.token,
		"Origin":          c.cfg.BaseURL,
		"Referer":         c.cfg.BaseURL + "/",
	}
	payload := map[string]any{
		"requester": map[string]any{"system": "YMSWebApp"},
	}

	body, err := s.http.PostJSON(ctx, c.cfg.StateURL, headers, payload)
	if err != nil {
		return nil, eris.Wrap(err, "portal: fetch yard state")
	}
	defer body.Close() //nolint:errcheck

	node, err := snapshot.Decode(body)
	if err != nil {
		return nil, eris.Wrap(err, "portal: decode yard state")
	}
	return node, nil
}

// hostOf extracts the host for rate-limiter keying. A parse failure just
// means no dedicated limiter for the host.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
