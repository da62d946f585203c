package passcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/tintura/internal/models"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/utils"
)

var (
	ErrNoActiveCode    = errors.New("no active code, request a new one")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
	ErrNoDispatcher    = errors.New("no code dispatcher configured")
	ErrSessionInvalid  = errors.New("session is not valid")
	ErrWrongAddress    = errors.New("address is not allowed")
)

// Dispatcher delivers a code to the operator over one channel.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, address, code string) error
}

type Options struct {
	JWTSecret   string
	SessionTTL  time.Duration
	CodeTTL     time.Duration
	MaxAttempts int
	// Address restricts challenges to one operator; empty allows any.
	Address string
}

// Service issues bcrypt-hashed one-time codes and turns a correct code
// into an AdminSession plus signed token.
type Service struct {
	repo        Repository
	dispatchers []Dispatcher
	opts        Options
	log         *logger.Logger
	now         func() time.Time
}

func NewService(repo Repository, opts Options, log *logger.Logger, dispatchers ...Dispatcher) *Service {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 10 * time.Minute
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:        repo,
		dispatchers: dispatchers,
		opts:        opts,
		log:         log.With("service", "PasscodeService"),
		now:         time.Now,
	}
}

func (s *Service) allowed(address string) bool {
	return s.opts.Address == "" || strings.EqualFold(strings.TrimSpace(address), s.opts.Address)
}

// RequestCode replaces any outstanding code for address and dispatches a
// new one. It succeeds when at least one dispatcher delivered the code.
func (s *Service) RequestCode(ctx context.Context, address string) error {
	const op = "PasscodeService.RequestCode"

	if !s.allowed(address) {
		return fmt.Errorf("%s: %w", op, ErrWrongAddress)
	}
	if len(s.dispatchers) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoDispatcher)
	}

	code, err := utils.GenerateCode()
	if err != nil {
		return fmt.Errorf("%s: generate code: %w", op, err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("%s: hash code: %w", op, err)
	}

	now := s.now()
	if err := s.repo.ExpireChallenges(ctx, address, now); err != nil {
		return fmt.Errorf("%s: expire previous: %w", op, err)
	}
	challenge := &models.PasscodeChallenge{
		Address:   address,
		CodeHash:  hash,
		ExpiresAt: now.Add(s.opts.CodeTTL),
	}
	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return fmt.Errorf("%s: store challenge: %w", op, err)
	}

	var errs []error
	delivered := 0
	for _, d := range s.dispatchers {
		if err := d.Dispatch(ctx, address, code); err != nil {
			s.log.Warn("code dispatch failed", "dispatcher", d.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			continue
		}
		delivered++
	}
	if delivered == 0 {
		challenge.ExpiresAt = now
		if err := s.repo.SaveChallenge(ctx, challenge); err != nil {
			s.log.Warn("failed to expire undelivered challenge", "error", err)
		}
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	s.log.Info("code dispatched", "address", address, "channels", delivered)
	return nil
}

// VerifyCode consumes the active challenge when code matches it.
func (s *Service) VerifyCode(ctx context.Context, address, code string) (Session, error) {
	const op = "PasscodeService.VerifyCode"

	if !s.allowed(address) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrWrongAddress)
	}

	now := s.now()
	challenge, err := s.repo.LatestChallenge(ctx, address, now)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if challenge.Attempts >= s.opts.MaxAttempts {
		return Session{}, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	if !utils.CheckCode(challenge.CodeHash, code) {
		challenge.Attempts++
		if err := s.repo.SaveChallenge(ctx, challenge); err != nil {
			return Session{}, fmt.Errorf("%s: record attempt: %w", op, err)
		}
		if challenge.Attempts >= s.opts.MaxAttempts {
			return Session{}, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
		}
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}

	challenge.UsedAt = &now
	if err := s.repo.SaveChallenge(ctx, challenge); err != nil {
		return Session{}, fmt.Errorf("%s: consume challenge: %w", op, err)
	}

	session := &models.AdminSession{
		Address:   address,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	session.ID = uuid.New()
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return Session{}, fmt.Errorf("%s: create session: %w", op, err)
	}

	token, err := utils.GenerateSessionToken(s.opts.JWTSecret, session.ID, address, s.opts.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("%s: sign token: %w", op, err)
	}
	return Session{ID: session.ID, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a bearer token to its live session row.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	const op = "PasscodeService.Authenticate"

	id, err := utils.ParseSessionToken(s.opts.JWTSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrSessionInvalid, err)
	}
	session, err := s.repo.FindSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !session.Active(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionInvalid)
	}
	return session, nil
}

// SignOut revokes a single session.
func (s *Service) SignOut(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.RevokeSession(ctx, id, s.now()); err != nil {
		return fmt.Errorf("PasscodeService.SignOut: %w", err)
	}
	return nil
}

func (s *Service) RevokeAll(ctx context.Context) error {
	if err := s.repo.RevokeSessions(ctx, s.now()); err != nil {
		return fmt.Errorf("PasscodeService.RevokeAll: %w", err)
	}
	return nil
}
