package access

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sftgate/pkg/domain-errors"
	audit "sftgate/pkg/platform/audit"
	"sftgate/pkg/requestcontext"
)

type stubRegistry struct {
	allowed bool
	err     error

	gotCaller    string
	gotContainer string
	calls        int
}

func (s *stubRegistry) HasAccess(_ context.Context, callerID, container string, _, _ bool) (bool, error) {
	s.calls++
	s.gotCaller = callerID
	s.gotContainer = container
	return s.allowed, s.err
}

type captureEmitter struct {
	events []audit.Event
}

func (c *captureEmitter) Emit(_ context.Context, event audit.Event) {
	c.events = append(c.events, event)
}

func callerCtx(id string, admin, orgUser bool) context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	return requestcontext.WithCaller(ctx, requestcontext.Caller{ID: id, Admin: admin, OrgUser: orgUser})
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleOf(requestcontext.Caller{Admin: true}))
	assert.Equal(t, RoleAdmin, RoleOf(requestcontext.Caller{Admin: true, OrgUser: true}))
	assert.Equal(t, RoleOrgUser, RoleOf(requestcontext.Caller{OrgUser: true}))
	assert.Equal(t, RoleExternal, RoleOf(requestcontext.Caller{ID: "sp-1"}))
}

func TestAuthorize_Granted(t *testing.T) {
	reg := &stubRegistry{allowed: true}
	emitter := &captureEmitter{}
	guard := NewGuard(reg, slog.Default(), emitter)

	err := guard.Authorize(callerCtx("sp-1", false, false), "sft-acme")
	require.NoError(t, err)
	assert.Equal(t, "sp-1", reg.gotCaller)
	assert.Equal(t, "sft-acme", reg.gotContainer)
	assert.Empty(t, emitter.events, "grants are not audited")
}

func TestAuthorize_DeniedIsGenericButAudited(t *testing.T) {
	reg := &stubRegistry{allowed: false}
	emitter := &captureEmitter{}
	guard := NewGuard(reg, slog.Default(), emitter)

	err := guard.Authorize(callerCtx("sp-2", false, false), "sft-acme")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.NotContains(t, err.Error(), "sp-2", "denial must not leak registry detail")

	require.Len(t, emitter.events, 1)
	assert.Equal(t, audit.EventAccessDenied, emitter.events[0].Action)
	assert.Equal(t, "sp-2", emitter.events[0].CallerID)
	assert.Equal(t, "req-1", emitter.events[0].RequestID)
}

func TestAuthorize_NoIdentityDeniedBeforeRegistry(t *testing.T) {
	reg := &stubRegistry{allowed: true}
	emitter := &captureEmitter{}
	guard := NewGuard(reg, slog.Default(), emitter)

	// No caller in context at all.
	err := guard.Authorize(requestcontext.WithRequestID(context.Background(), "req-2"), "sft-acme")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Zero(t, reg.calls, "registry must not be consulted without an identity")

	// Caller present but with an empty subject.
	err = guard.Authorize(callerCtx("", false, false), "sft-acme")
	require.Error(t, err)
	assert.Zero(t, reg.calls)

	require.Len(t, emitter.events, 2)
	assert.Equal(t, audit.EventAccessNoIdentity, emitter.events[0].Action)
}

func TestAuthorize_RegistryFailureDeniesWithInternalError(t *testing.T) {
	reg := &stubRegistry{err: errors.New("store unreachable")}
	guard := NewGuard(reg, slog.Default(), nil)

	err := guard.Authorize(callerCtx("sp-1", false, false), "sft-acme")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestAuthorize_NilEmitterIsSafe(t *testing.T) {
	guard := NewGuard(&stubRegistry{allowed: false}, slog.Default(), nil)

	err := guard.Authorize(callerCtx("sp-1", false, false), "sft-acme")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
