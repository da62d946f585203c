package passcode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/models"
)

const operator = "ops@tintura.example"

type memRepo struct {
	mu         sync.Mutex
	challenges []*models.PasscodeChallenge
	sessions   map[uuid.UUID]*models.AdminSession
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: map[uuid.UUID]*models.AdminSession{}}
}

func (r *memRepo) ExpireChallenges(_ context.Context, address string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.challenges {
		if c.Address == address && c.UsedAt == nil && c.ExpiresAt.After(at) {
			c.ExpiresAt = at
		}
	}
	return nil
}

func (r *memRepo) CreateChallenge(_ context.Context, c *models.PasscodeChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	r.challenges = append(r.challenges, c)
	return nil
}

func (r *memRepo) LatestChallenge(_ context.Context, address string, now time.Time) (*models.PasscodeChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.challenges) - 1; i >= 0; i-- {
		c := r.challenges[i]
		if c.Address == address && c.UsedAt == nil && c.ExpiresAt.After(now) {
			return c, nil
		}
	}
	return nil, ErrNoActiveCode
}

func (r *memRepo) SaveChallenge(context.Context, *models.PasscodeChallenge) error { return nil }

func (r *memRepo) CreateSession(_ context.Context, s *models.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *memRepo) FindSession(_ context.Context, id uuid.UUID) (*models.AdminSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionInvalid
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) RevokeSession(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && s.RevokedAt == nil {
		s.RevokedAt = &at
	}
	return nil
}

func (r *memRepo) RevokeSessions(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RevokedAt == nil {
			s.RevokedAt = &at
		}
	}
	return nil
}

type captureDispatcher struct {
	name  string
	err   error
	codes []string
}

func (d *captureDispatcher) Name() string { return d.name }

func (d *captureDispatcher) Dispatch(_ context.Context, _, code string) error {
	if d.err != nil {
		return d.err
	}
	d.codes = append(d.codes, code)
	return nil
}

func (d *captureDispatcher) last() string { return d.codes[len(d.codes)-1] }

func newTestService(repo Repository, dispatchers ...Dispatcher) *Service {
	return NewService(repo, Options{JWTSecret: "test-secret", Address: operator, MaxAttempts: 3}, nil, dispatchers...)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestSanitizeCode(t *testing.T) {
	assert.Equal(t, "123456", SanitizeCode(" 12-34 56 "))
	assert.Equal(t, "", SanitizeCode("abc"))
	assert.Equal(t, "1234567", SanitizeCode("1234567"))
	assert.Equal(t, "2", SanitizeCode("１2"))
}

func TestServiceIssuesAndVerifiesCode(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	require.Len(t, mail.codes, 1)
	assert.NotEqual(t, mail.last(), repo.challenges[0].CodeHash)

	session, err := svc.VerifyCode(ctx, operator, mail.last())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	row, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, row.ID)

	_, err = svc.VerifyCode(ctx, operator, mail.last())
	assert.ErrorIs(t, err, ErrNoActiveCode, "codes are single use")
}

func TestServiceNewCodeExpiresPrevious(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	first := mail.last()
	require.NoError(t, svc.RequestCode(ctx, operator))
	second := mail.last()

	if first != second {
		_, err := svc.VerifyCode(ctx, operator, first)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}
	_, err := svc.VerifyCode(ctx, operator, second)
	assert.NoError(t, err)
}

func TestServiceLimitsAttempts(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	bad := wrongCode(mail.last())

	_, err := svc.VerifyCode(ctx, operator, bad)
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.VerifyCode(ctx, operator, bad)
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.VerifyCode(ctx, operator, bad)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = svc.VerifyCode(ctx, operator, mail.last())
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestServiceRejectsExpiredCode(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err := svc.VerifyCode(ctx, operator, mail.last())
	assert.ErrorIs(t, err, ErrNoActiveCode)
}

func TestServiceDispatchFailures(t *testing.T) {
	ctx := context.Background()

	_, err := newTestService(newMemRepo()).VerifyCode(ctx, "intruder@example.com", "123456")
	assert.ErrorIs(t, err, ErrWrongAddress)

	err = newTestService(newMemRepo()).RequestCode(ctx, operator)
	assert.ErrorIs(t, err, ErrNoDispatcher)

	repo := newMemRepo()
	broken := &captureDispatcher{name: "email", err: errors.New("smtp down")}
	err = newTestService(repo, broken).RequestCode(ctx, operator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	_, err = repo.LatestChallenge(ctx, operator, time.Now())
	assert.ErrorIs(t, err, ErrNoActiveCode)

	tg := &captureDispatcher{name: "telegram"}
	assert.NoError(t, newTestService(newMemRepo(), broken, tg).RequestCode(ctx, operator))
	assert.Len(t, tg.codes, 1)
}

func TestServiceRevokeAllInvalidatesTokens(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	session, err := svc.VerifyCode(ctx, operator, mail.last())
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestServiceSignOut(t *testing.T) {
	repo := newMemRepo()
	mail := &captureDispatcher{name: "email"}
	svc := newTestService(repo, mail)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, operator))
	session, err := svc.VerifyCode(ctx, operator, mail.last())
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, session.ID))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

type fakeChallenger struct {
	requestErr error
	verifyErr  error
	requested  []string
	verified   []string
}

func (f *fakeChallenger) RequestCode(_ context.Context, address string) error {
	f.requested = append(f.requested, address)
	return f.requestErr
}

func (f *fakeChallenger) VerifyCode(_ context.Context, _, code string) (Session, error) {
	f.verified = append(f.verified, code)
	if f.verifyErr != nil {
		return Session{}, f.verifyErr
	}
	return Session{ID: uuid.New(), Token: "signed"}, nil
}

type fakeRevoker struct {
	calls int
	err   error
}

func (f *fakeRevoker) RevokeAll(context.Context) error {
	f.calls++
	return f.err
}

func TestGateBlocksShortCodesLocally(t *testing.T) {
	ch := &fakeChallenger{}
	g := NewGate(operator, ch, &fakeRevoker{}, nil)
	ctx := context.Background()

	require.NoError(t, g.RequestCode(ctx))
	assert.Equal(t, []string{operator}, ch.requested)
	assert.Equal(t, StateCodeRequested, g.State())

	_, err := g.Verify(ctx, "12345")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, ch.verified)

	session, err := g.Verify(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, ch.verified)
	assert.Equal(t, "signed", session.Token)
	assert.Equal(t, StateAuthenticated, g.State())
}

func TestGateVerifyFailureStaysRequested(t *testing.T) {
	ch := &fakeChallenger{verifyErr: ErrInvalidCode}
	g := NewGate(operator, ch, &fakeRevoker{}, nil)
	ctx := context.Background()

	require.NoError(t, g.RequestCode(ctx))
	_, err := g.Verify(ctx, "12 34 56")
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, StateCodeRequested, g.State())
	assert.Equal(t, []string{"123456"}, ch.verified)
}

func TestGateRequestFailure(t *testing.T) {
	ch := &fakeChallenger{requestErr: errors.New("rate limited")}
	g := NewGate(operator, ch, &fakeRevoker{}, nil)

	err := g.RequestCode(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	assert.Equal(t, StateUnauthenticated, g.State())
}

func TestGateVerifyWithoutRequest(t *testing.T) {
	ch := &fakeChallenger{}
	g := NewGate(operator, ch, &fakeRevoker{}, nil)

	_, err := g.Verify(context.Background(), "123456")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, ch.verified)
}

func TestGateStartSignsOut(t *testing.T) {
	ch := &fakeChallenger{}
	rev := &fakeRevoker{}
	g := NewGate(operator, ch, rev, nil)
	ctx := context.Background()

	require.NoError(t, g.RequestCode(ctx))
	_, err := g.Verify(ctx, "123456")
	require.NoError(t, err)

	require.NoError(t, g.Start(ctx))
	assert.Equal(t, 1, rev.calls)
	assert.Equal(t, StateUnauthenticated, g.State())

	rev.err = errors.New("db down")
	err = g.Start(ctx)
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	assert.Equal(t, StateUnauthenticated, g.State())
}
