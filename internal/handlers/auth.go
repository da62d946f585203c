package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/editor"
	"github.com/example/tintura/internal/middleware"
	"github.com/example/tintura/internal/passcode"
)

// SessionCloser revokes one admin session.
type SessionCloser interface {
	SignOut(ctx context.Context, id uuid.UUID) error
}

// AuthHandler drives the passcode gate for the admin area.
type AuthHandler struct {
	gate      *passcode.Gate
	sessions  SessionCloser
	workspace *editor.Workspace
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(gate *passcode.Gate, sessions SessionCloser, workspace *editor.Workspace) *AuthHandler {
	return &AuthHandler{gate: gate, sessions: sessions, workspace: workspace}
}

type verifyRequest struct {
	Code string `json:"code"`
}

// Start signs every admin out and returns the gate to its first step.
// Unsaved drafts are kept for the operator's next sign-in.
func (h *AuthHandler) Start(c *fiber.Ctx) error {
	if err := h.gate.Start(c.UserContext()); err != nil {
		return err
	}
	return h.State(c)
}

// State reports where the gate currently is.
func (h *AuthHandler) State(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"state": h.gate.State(),
		},
	})
}

// RequestCode sends a one-time code to the operator address.
func (h *AuthHandler) RequestCode(c *fiber.Ctx) error {
	if err := h.gate.RequestCode(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"state":   h.gate.State(),
			"message": "Code sent. It expires in 10 minutes.",
		},
	})
}

// Verify exchanges a code for a session token.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	session, err := h.gate.Verify(c.UserContext(), req.Code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    session,
	})
}

// SignOut revokes the caller's session and discards its draft.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return apperr.Auth("not signed in", nil)
	}
	h.workspace.Drop(session.Address)
	if err := h.sessions.SignOut(c.UserContext(), session.ID); err != nil {
		return apperr.Auth("Failed to sign out", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
