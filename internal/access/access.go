// Package access composes the caller's identity and role with the tenant
// registry to produce allow/deny decisions for every container and file
// operation.
package access

import (
	"context"
	"log/slog"

	dErrors "sftgate/pkg/domain-errors"
	audit "sftgate/pkg/platform/audit"
	"sftgate/pkg/requestcontext"
)

// Role is the closed set of caller classes. The boundary representation is
// two independent booleans; modeling them as a variant keeps "neither flag"
// from being mistaken for a fourth role: it is exactly the external caller.
type Role int

const (
	RoleExternal Role = iota
	RoleOrgUser
	RoleAdmin
)

// RoleOf derives the caller's role from its claims. Admin wins when both
// elevated flags are present.
func RoleOf(c requestcontext.Caller) Role {
	switch {
	case c.Admin:
		return RoleAdmin
	case c.OrgUser:
		return RoleOrgUser
	default:
		return RoleExternal
	}
}

// Registry answers container access questions. Implemented by the registry
// service.
type Registry interface {
	HasAccess(ctx context.Context, callerID, container string, isAdmin, isOrgUser bool) (bool, error)
}

// Emitter is the best-effort audit sink for denial events.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Guard is the authorization gate. Denials are reported to the caller as a
// generic forbidden error; the full reason goes to the warn log and the audit
// sink only.
type Guard struct {
	registry Registry
	logger   *slog.Logger
	audit    Emitter
}

// NewGuard creates a gate over the registry. The audit emitter may be nil.
func NewGuard(registry Registry, logger *slog.Logger, emitter Emitter) *Guard {
	return &Guard{registry: registry, logger: logger, audit: emitter}
}

// ErrForbidden is the only error detail an unauthorized caller ever sees.
var ErrForbidden = dErrors.New(dErrors.CodeForbidden, "access to this container is forbidden")

// Authorize decides whether the caller in ctx may act on container. A caller
// with no extractable identity is denied before the registry is consulted,
// and that case is logged distinctly from a registry denial. Registry lookup
// failures surface as generic internal errors: access is still not granted,
// but the caller can tell outage from denial.
func (g *Guard) Authorize(ctx context.Context, container string) error {
	requestID := requestcontext.RequestID(ctx)

	caller, ok := requestcontext.CallerFrom(ctx)
	if !ok || caller.ID == "" {
		g.logger.WarnContext(ctx, "container access denied: no caller identity",
			"container", container,
			"request_id", requestID,
		)
		g.emit(ctx, audit.EventAccessNoIdentity, "", container, "no caller identity")
		return ErrForbidden
	}

	allowed, err := g.registry.HasAccess(ctx, caller.ID, container, caller.Admin, caller.OrgUser)
	if err != nil {
		g.logger.ErrorContext(ctx, "container access check failed",
			"error", err,
			"caller_id", caller.ID,
			"container", container,
			"request_id", requestID,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "access check failed")
	}
	if !allowed {
		g.logger.WarnContext(ctx, "container access denied",
			"caller_id", caller.ID,
			"container", container,
			"role", RoleOf(caller),
			"request_id", requestID,
		)
		g.emit(ctx, audit.EventAccessDenied, caller.ID, container, "registry denied")
		return ErrForbidden
	}
	return nil
}

// emit sends a denial event to the audit sink. Best-effort: the emitter
// swallows its own failures and must never affect the decision.
func (g *Guard) emit(ctx context.Context, action, callerID, container, reason string) {
	if g.audit == nil {
		return
	}
	meta := requestcontext.ClientMetadataFrom(ctx)
	g.audit.Emit(ctx, audit.Event{
		Action:    action,
		CallerID:  callerID,
		Container: container,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  meta.IP,
		UserAgent: meta.UserAgent,
	})
}
