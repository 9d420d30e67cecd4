package authzinfra

import (
	"context"
	"time"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/kernel"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// LogxAuditService implements authz.AuditService using structured logx
// logging. This is where the denial-vs-failure distinction of access
// checks is preserved.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogLogin(_ context.Context, userID kernel.UserID, success bool) {
	logx.WithFields(logx.Fields{
		"audit_event": "login",
		"user_id":     userID,
		"success":     success,
		"timestamp":   time.Now(),
	}).Info("Audit: login")
}

func (s *LogxAuditService) LogLogout(_ context.Context, userID kernel.UserID) {
	logx.WithFields(logx.Fields{
		"audit_event": "logout",
		"user_id":     userID,
		"timestamp":   time.Now(),
	}).Info("Audit: logout")
}

func (s *LogxAuditService) LogTokenRefresh(_ context.Context, userID kernel.UserID, success bool) {
	logx.WithFields(logx.Fields{
		"audit_event": "token_refresh",
		"user_id":     userID,
		"success":     success,
		"timestamp":   time.Now(),
	}).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogAccessDecision(_ context.Context, principal kernel.UserID, resource, resourceID string, allowed bool, checkFailed bool, reason string) {
	logx.WithFields(logx.Fields{
		"audit_event":  "access_decision",
		"user_id":      principal,
		"resource":     resource,
		"resource_id":  resourceID,
		"allowed":      allowed,
		"check_failed": checkFailed,
		"reason":       reason,
		"timestamp":    time.Now(),
	}).Info("Audit: access decision")
}

var _ authz.AuditService = (*LogxAuditService)(nil)
