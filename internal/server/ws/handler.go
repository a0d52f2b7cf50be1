package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/ratelimit"
	"github.com/lumina-social/lumina/internal/server/session"
	"github.com/lumina-social/lumina/internal/server/users"
)

// connState is what the channel remembers about one connection: the user
// once authentication succeeds, nothing before that.
type connState struct {
	clientKind string
	user       *users.User
}

// Channel upgrades HTTP requests to the websocket protocol and speaks the
// client message schema. Authentication over the channel yields a durable
// session token instead of a cookie.
type Channel struct {
	users    *users.Service
	manager  *session.Manager
	auth     *ratelimit.AuthLimiter
	logger   logging.Logger
	upgrader websocket.Upgrader
}

func NewChannel(usersSvc *users.Service, manager *session.Manager, auth *ratelimit.AuthLimiter, logger logging.Logger) *Channel {
	return &Channel{
		users:   usersSvc,
		manager: manager,
		auth:    auth,
		logger:  logger.With("module", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (c *Channel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ip := ratelimit.ClientKey(r)
	st := &connState{}

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		for _, reply := range c.handleText(r.Context(), st, ip, data) {
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
		}
	}
}

// handleText dispatches one inbound text frame and returns the frames to
// send back, in order.
func (c *Channel) handleText(ctx context.Context, st *connState, ip string, raw []byte) [][]byte {
	if string(raw) == "ping" {
		return [][]byte{[]byte("pong")}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn(ctx, "undecodable channel message", "error", err)
		return [][]byte{[]byte("unknown")}
	}

	switch env.Type {
	case typeIntroduction:
		return c.handleIntroduction(ctx, st, env)
	case typeLoginAuthRequest:
		return c.handleLogin(ctx, st, ip, env)
	case typeRegisterRequest:
		return c.handleRegister(ctx, st, env)
	case typeRegisterPrecheck:
		return c.handlePrecheck(ctx, env)
	case typeOwnUserInfoRequest:
		if st.user == nil {
			return [][]byte{authFailure()}
		}
		return [][]byte{ownUserInfo(st.user.Username, st.user.Email, strconv.FormatInt(st.user.ID, 10))}
	default:
		return [][]byte{[]byte("unknown")}
	}
}

func (c *Channel) handleIntroduction(ctx context.Context, st *connState, env envelope) [][]byte {
	st.clientKind = env.ClientKind

	if env.TryRevive == nil {
		return [][]byte{greeting("Hello from server!")}
	}

	user, err := c.manager.Revive(ctx, *env.TryRevive)
	if err != nil {
		if errors.Is(err, common.ErrorSessionTokenNotFound) {
			c.logger.Info(ctx, "session revival failed, token not found")
		}
		return [][]byte{authFailure()}
	}

	st.user = user
	c.logger.Info(ctx, "session revived", "username", user.Username)
	return [][]byte{authSuccess(*env.TryRevive, user.Username)}
}

func (c *Channel) handleLogin(ctx context.Context, st *connState, ip string, env envelope) [][]byte {
	// Consult the auth limiter before any storage work happens.
	if !c.auth.AllowIP(ip) {
		c.logger.Warn(ctx, "rate limited authentication attempt", "ip", ip)
		return [][]byte{authFailure()}
	}

	result := c.users.Authenticate(ctx, env.EmailUsername, env.Password)
	if result.Outcome != users.AuthSuccess {
		c.logger.Info(ctx, "channel authentication refused", "identifier", env.EmailUsername)
		return [][]byte{authFailure()}
	}

	user, err := c.users.GetByID(ctx, result.UserID)
	if err != nil {
		c.logger.Error(ctx, "post-auth user fetch failed", "user_id", result.UserID, "error", err)
		return [][]byte{authFailure()}
	}

	token, err := c.manager.Grant(ctx, user)
	if err != nil {
		c.logger.Error(ctx, "session grant failed", "user_id", user.ID, "error", err)
		return [][]byte{authFailure()}
	}

	st.user = user
	return [][]byte{authSuccess(token, user.Username)}
}

func (c *Channel) handleRegister(ctx context.Context, st *connState, env envelope) [][]byte {
	user, err := c.users.Register(ctx, env.Username, env.Email, env.Password)
	if err != nil {
		c.logger.Info(ctx, "channel registration refused", "username", env.Username, "reason", err)
		return [][]byte{authFailure()}
	}

	token, err := c.manager.Grant(ctx, user)
	if err != nil {
		c.logger.Error(ctx, "session grant failed", "user_id", user.ID, "error", err)
		return [][]byte{authFailure()}
	}

	st.user = user
	return [][]byte{authSuccess(token, user.Username)}
}

func (c *Channel) handlePrecheck(ctx context.Context, env envelope) [][]byte {
	err := c.users.RegisterPrecheck(ctx, env.Username, env.Email, env.Password)
	if err == nil {
		return [][]byte{precheckResponse(true, "")}
	}
	return [][]byte{precheckResponse(false, precheckWhy(err))}
}

// precheckWhy maps validation sentinels to the phrasing clients display.
func precheckWhy(err error) string {
	switch {
	case errors.Is(err, common.ErrorEmailInUse):
		return "Email already in use"
	case errors.Is(err, common.ErrorUsernameInUse):
		return "Username already in use"
	case errors.Is(err, common.ErrorEmailInvalid):
		return "Email not valid"
	case errors.Is(err, common.ErrorUsernameInvalid),
		errors.Is(err, common.ErrorUsernameTooShort),
		errors.Is(err, common.ErrorUsernameTooLong):
		return "Username invalid: " + err.Error()
	case errors.Is(err, common.ErrorPasswordInvalid):
		return "Password not valid"
	default:
		return "Unknown error"
	}
}
