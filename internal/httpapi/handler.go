// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

type credentialsRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	_, err := s.svc.Register(ctx, req.FirstName, req.LastName, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"message": "account created"})
}

func (s *Server) handleLogin(c *gin.Context) {
	addr := c.ClientIP()
	if wait := s.limiter.check(addr); wait > 0 {
		s.countLogin("rate_limited")
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts, try again later"})
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	token, err := s.svc.Login(ctx, req.FirstName, req.LastName, req.Password)
	if err != nil {
		if errorCode(err) == auth.CodeInvalidCredentials {
			s.limiter.recordFailure(addr)
			s.countLogin("invalid_credentials")
		} else {
			s.countLogin("error")
		}
		s.respondError(c, err)
		return
	}

	s.limiter.reset(addr)
	s.countLogin("success")

	s.setSessionCookie(c, token, int(s.tokens.TTL().Seconds()))
	// Token is also returned in the body for clients that keep it in
	// local storage instead of the cookie.
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// handleLogout clears the session cookie. With stateless tokens there is
// nothing to revoke server-side, so this is idempotent by construction.
func (s *Server) handleLogout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// handleMe returns the claims of the verified session token.
func (s *Server) handleMe(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	resp := gin.H{
		"id":         claims.AccountID,
		"first_name": claims.FirstName,
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", s.cookieSecure, true)
}

// respondError maps an error to an HTTP status. Internal detail stays in
// the logs; clients get a stable, non-leaking message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch errorCode(err) {
	case auth.CodeValidationFailed, auth.CodeEmptyPassword:
		status = http.StatusBadRequest
		message = "first_name, last_name and password are required"
	case auth.CodeInvalidCredentials:
		status = http.StatusUnauthorized
		message = "invalid credentials"
	}

	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	}
	c.JSON(status, gin.H{"error": message})
}

func errorCode(err error) string {
	return errutil.ErrorCode(err)
}

func (s *Server) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.TokenVerifications.WithLabelValues(outcome).Inc()
	}
}
