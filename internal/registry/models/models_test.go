package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sftgate/pkg/domain-errors"
)

func newProvisioning() *ThirdParty {
	now := time.Now().UTC()
	return &ThirdParty{
		ID:            "tp-1",
		CompanyName:   "Acme Corp",
		ContainerName: "sft-acme-corp",
		Status:        StatusProvisioning,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestActivate_FromProvisioning(t *testing.T) {
	tp := newProvisioning()
	now := time.Now().UTC()

	require.NoError(t, tp.Activate("sp-1", "hash", now))
	assert.Equal(t, StatusActive, tp.Status)
	assert.Equal(t, "sp-1", tp.ExternalIdentityRef)
	assert.Equal(t, now, tp.UpdatedAt)
}

func TestActivate_RejectedOutsideProvisioning(t *testing.T) {
	tp := newProvisioning()
	require.NoError(t, tp.Activate("sp-1", "", time.Now()))

	err := tp.Activate("sp-2", "", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, "sp-1", tp.ExternalIdentityRef)
}

func TestRequestDeprovision_OnlyFromActive(t *testing.T) {
	tp := newProvisioning()

	// Deprovisioning an unprovisioned tenant is a no-op, not a transition.
	assert.False(t, tp.RequestDeprovision(time.Now()))
	assert.Equal(t, StatusProvisioning, tp.Status)

	require.NoError(t, tp.Activate("sp-1", "", time.Now()))
	assert.True(t, tp.RequestDeprovision(time.Now()))
	assert.Equal(t, StatusDeprovisioning, tp.Status)

	// Repeat requests do not move state again.
	assert.False(t, tp.RequestDeprovision(time.Now()))
}

func TestCompleteDeprovision_ClearsIdentity(t *testing.T) {
	tp := newProvisioning()
	require.NoError(t, tp.Activate("sp-1", "cred", time.Now()))
	tp.RequestDeprovision(time.Now())

	require.NoError(t, tp.CompleteDeprovision(time.Now()))
	assert.Equal(t, StatusInactive, tp.Status)
	assert.Empty(t, tp.ExternalIdentityRef)
	assert.Empty(t, tp.CredentialRef)
}

func TestCompleteDeprovision_NothingLeavesInactive(t *testing.T) {
	tp := newProvisioning()
	require.NoError(t, tp.Activate("sp-1", "", time.Now()))
	tp.RequestDeprovision(time.Now())
	require.NoError(t, tp.CompleteDeprovision(time.Now()))

	err := tp.CompleteDeprovision(time.Now())
	require.Error(t, err)
	assert.False(t, tp.RequestDeprovision(time.Now()))
	assert.Equal(t, StatusInactive, tp.Status)
}

func TestDeriveContainerName(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":        "sft-acme-corp",
		"Acme, Inc.":       "sft-acme--inc",
		"--Trimmed--":      "sft-trimmed",
		"ALLCAPS":          "sft-allcaps",
		"unicode é x": "sft-unicode---x",
	}
	for company, want := range cases {
		assert.Equal(t, want, DeriveContainerName("sft-", company), "company %q", company)
	}
}

func TestDeriveContainerName_Capped(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := DeriveContainerName("sft-", long)
	assert.Equal(t, "sft-"+strings.Repeat("a", 50), got)
}
