package passcode

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/utils"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateCodeRequested   State = "code_requested"
	StateAuthenticated   State = "authenticated"
)

// Session is an issued admin session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Challenger sends and checks one-time codes.
type Challenger interface {
	RequestCode(ctx context.Context, address string) error
	VerifyCode(ctx context.Context, address, code string) (Session, error)
}

// Revoker ends every live admin session.
type Revoker interface {
	RevokeAll(ctx context.Context) error
}

// Gate walks the operator through request code, then verify. It only ever
// challenges the one configured address.
type Gate struct {
	mu         sync.Mutex
	address    string
	challenger Challenger
	revoker    Revoker
	log        *logger.Logger
	state      State
}

func NewGate(address string, challenger Challenger, revoker Revoker, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{
		address:    strings.TrimSpace(address),
		challenger: challenger,
		revoker:    revoker,
		log:        log.With("component", "PasscodeGate"),
		state:      StateUnauthenticated,
	}
}

func (g *Gate) Address() string { return g.address }

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Start signs everyone out. It runs on every fresh start so a previous
// session is never silently resumed.
func (g *Gate) Start(ctx context.Context) error {
	if err := g.revoker.RevokeAll(ctx); err != nil {
		g.mu.Lock()
		g.state = StateUnauthenticated
		g.mu.Unlock()
		return apperr.Auth("Failed to reset admin sessions", err)
	}
	g.mu.Lock()
	g.state = StateUnauthenticated
	g.mu.Unlock()
	g.log.Info("admin sessions reset")
	return nil
}

func (g *Gate) RequestCode(ctx context.Context) error {
	if err := g.challenger.RequestCode(ctx, g.address); err != nil {
		g.mu.Lock()
		g.state = StateUnauthenticated
		g.mu.Unlock()
		g.log.Warn("passcode request failed", "address", g.address, "error", err)
		return apperr.Auth("Failed to send code.", err)
	}
	g.mu.Lock()
	g.state = StateCodeRequested
	g.mu.Unlock()
	g.log.Info("passcode requested", "address", g.address)
	return nil
}

// Verify checks input after stripping non-digits. Input that is not
// exactly six digits never reaches the challenger.
func (g *Gate) Verify(ctx context.Context, input string) (Session, error) {
	code := SanitizeCode(input)
	if len(code) != utils.CodeLength {
		return Session{}, apperr.Validation("Enter the 6-digit code")
	}

	g.mu.Lock()
	requested := g.state == StateCodeRequested
	g.mu.Unlock()
	if !requested {
		return Session{}, apperr.Validation("Request a code first")
	}

	session, err := g.challenger.VerifyCode(ctx, g.address, code)
	if err != nil {
		g.log.Warn("passcode rejected", "address", g.address, "error", err)
		return Session{}, apperr.Auth("Invalid code.", err)
	}

	g.mu.Lock()
	g.state = StateAuthenticated
	g.mu.Unlock()
	g.log.Info("admin authenticated", "address", g.address, "session_id", session.ID)
	return session, nil
}

// SanitizeCode keeps only the digits of s.
func SanitizeCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
