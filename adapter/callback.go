package adapter

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/identity"
	"github.com/skillsenselab/authbridge/logger"
)

// callbackResult is what the redirect endpoint hands back to the flow.
type callbackResult struct {
	code  string
	state string
	err   error
}

// SignInInteractive runs the full authorization code flow against the
// system browser: it binds a loopback redirect listener, opens the
// authorization URL and blocks until the callback arrives, the flow
// times out or ctx is cancelled.
func (a *Adapter) SignInInteractive(ctx context.Context) (identity.NativeUser, error) {
	if a.cfg.OpenURL == nil {
		return nil, errors.MissingField("open_url")
	}

	listener, err := net.Listen("tcp", a.cfg.CallbackAddr)
	if err != nil {
		a.setLoading(false)
		return nil, errors.SignInFailed(string(a.cfg.Provider), "callback listener bind failed").WithCause(err)
	}

	redirectURI := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	results := make(chan callbackResult, 1)

	srv := &http.Server{Handler: a.callbackEngine(results)}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.log.Error("callback server error", logger.ErrorFields("serve", err))
		}
	}()
	defer srv.Close()

	authURL, err := a.BeginSignIn(redirectURI)
	if err != nil {
		return nil, err
	}

	a.log.Info("opening browser for sign-in", logger.Fields(
		logger.FieldProvider, a.cfg.Provider.String(),
		"redirect_uri", redirectURI,
	))
	if err := a.cfg.OpenURL(authURL); err != nil {
		a.setLoading(false)
		return nil, errors.SignInFailed(string(a.cfg.Provider), "browser launch failed").WithCause(err)
	}

	flowCtx, cancel := context.WithTimeout(ctx, a.cfg.FlowTimeout)
	defer cancel()

	select {
	case res := <-results:
		if res.err != nil {
			a.setLoading(false)
			return nil, res.err
		}
		return a.CompleteSignIn(ctx, res.code, res.state)
	case <-flowCtx.Done():
		a.setLoading(false)
		if ctx.Err() != nil {
			return nil, errors.SignInFailed(string(a.cfg.Provider), "sign-in cancelled").WithCause(ctx.Err())
		}
		return nil, errors.Timeout("interactive sign-in")
	}
}

// callbackEngine builds the Gin engine serving the redirect endpoint.
func (a *Adapter) callbackEngine(results chan<- callbackResult) *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/callback", func(c *gin.Context) {
		if errCode := c.Query("error"); errCode != "" {
			desc := c.Query("error_description")
			c.String(http.StatusOK, "Sign-in failed: %s. You can close this window.", errCode)
			select {
			case results <- callbackResult{err: errors.SignInFailed(string(a.cfg.Provider), errCode).WithDetail("description", desc)}:
			default:
			}
			return
		}

		code := c.Query("code")
		state := c.Query("state")
		if code == "" || state == "" {
			c.String(http.StatusBadRequest, "Missing code or state parameter.")
			return
		}

		c.String(http.StatusOK, "Signed in to %s. You can close this window.", a.cfg.Provider.Label())
		select {
		case results <- callbackResult{code: code, state: state}:
		default:
			// A second redirect for the same flow is ignored.
		}
	})

	return engine
}
