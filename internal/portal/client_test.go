package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/yardops-cli/internal/config"
	"github.com/sells-group/yardops-cli/internal/snapshot"
)

const landingPage = `<html><head><script>
var x = 1;
window.ymsSecurityToken = "tok-abc-123";
</script></head><body></body></html>`

func portalConfig(baseURL string) config.PortalConfig {
	return config.PortalConfig{
		BaseURL:     baseURL,
		LandingPath: "/yms/shipclerk/",
		StateURL:    baseURL + "/call/getYardStateWithPendingMoves",
		TimeoutSecs: 5,
	}
}

func testSites() config.SitesConfig {
	return config.SitesConfig{
		RoutingAccounts:  map[string]string{"DTM1": "ACCT-DTM1"},
		ExternalAccounts: map[string]string{"VEEY": "ACCT-VEEY"},
	}
}

func TestOpenSession_ExtractsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/yms/shipclerk/", r.URL.Path)
		_, _ = w.Write([]byte(landingPage))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	sess, err := client.OpenSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-abc-123", sess.Token())
}

func TestOpenSession_TokenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	_, err := client.OpenSession(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestSwitchYard(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/transcore/putData") {
			gotQuery = r.URL.RawQuery
			return
		}
		_, _ = w.Write([]byte(landingPage))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	sess, err := client.OpenSession(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.SwitchYard(context.Background(), sess, "DTM1"))
	assert.Contains(t, gotQuery, "operation=setActiveAccount")
	assert.Contains(t, gotQuery, "accountId=ACCT-DTM1")
	assert.Contains(t, gotQuery, "_=")
}

func TestSwitchYard_ExternalAccountResolves(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/transcore/putData") {
			gotQuery = r.URL.RawQuery
			return
		}
		_, _ = w.Write([]byte(landingPage))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	sess, err := client.OpenSession(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.SwitchYard(context.Background(), sess, "VEEY"))
	assert.Contains(t, gotQuery, "accountId=ACCT-VEEY")
}

func TestSwitchYard_UnknownSite(t *testing.T) {
	client := New(portalConfig("http://unused"), testSites())
	err := client.SwitchYard(context.Background(), &Session{}, "XXXX")
	assert.Error(t, err)
}

func TestYardState(t *testing.T) {
	const stateBody = `{"locationsSummaries":[{"yardName":"DTM1","locations":[]}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/call/getYardStateWithPendingMoves" {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "getYardStateWithPendingMoves", r.Header.Get("api"))
			assert.Equal(t, "POST", r.Header.Get("method"))
			assert.Equal(t, "tok-abc-123", r.Header.Get("token"))
			_, _ = w.Write([]byte(stateBody))
			return
		}
		_, _ = w.Write([]byte(landingPage))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	sess, err := client.OpenSession(context.Background())
	require.NoError(t, err)

	node, err := client.YardState(context.Background(), sess)
	require.NoError(t, err)
	require.IsType(t, &snapshot.Object{}, node)
	assert.True(t, snapshot.Validate(node, "DTM1"))
}

func TestYardState_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"truncated":`))
			return
		}
		_, _ = w.Write([]byte(landingPage))
	}))
	defer srv.Close()

	client := New(portalConfig(srv.URL), testSites())
	sess, err := client.OpenSession(context.Background())
	require.NoError(t, err)

	_, err = client.YardState(context.Background(), sess)
	assert.Error(t, err)
}
