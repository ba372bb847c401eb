// Package models holds the tenant registry's domain types: the third-party
// record and its lifecycle state machine.
package models

import (
	"strings"
	"time"

	dErrors "sftgate/pkg/domain-errors"
)

// Status is a third party's lifecycle state. Transitions move strictly
// forward: provisioning -> active -> deprovisioning -> inactive. Nothing
// leaves inactive and no state is skipped.
type Status string

const (
	StatusProvisioning   Status = "provisioning"
	StatusActive         Status = "active"
	StatusDeprovisioning Status = "deprovisioning"
	StatusInactive       Status = "inactive"
)

// ThirdParty is a registered external organization and the authoritative
// mapping to its storage container. Records are never physically deleted;
// deprovisioned tenants are retained as inactive for audit.
type ThirdParty struct {
	ID                string
	CompanyName       string
	ContactEmail      string
	ContainerName     string
	AutomationEnabled bool

	// ExternalIdentityRef and CredentialRef are populated by the provisioning
	// workflow once automation completes, and cleared on deprovisioning.
	ExternalIdentityRef string
	CredentialRef       string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the record grants container access.
func (t *ThirdParty) IsActive() bool {
	return t.Status == StatusActive
}

// Activate completes provisioning, attaching the external identity reference
// bound to the tenant's container. Only valid from provisioning.
func (t *ThirdParty) Activate(identityRef, credentialRef string, now time.Time) error {
	if t.Status != StatusProvisioning {
		return dErrors.New(dErrors.CodeInvariantViolation, "third party is not provisioning")
	}
	t.Status = StatusActive
	t.ExternalIdentityRef = identityRef
	t.CredentialRef = credentialRef
	t.UpdatedAt = now
	return nil
}

// RequestDeprovision moves an active record into deprovisioning. Requesting
// deprovision of a record still provisioning (or already on its way out) is a
// no-op, not a transition: changed reports whether the state moved.
func (t *ThirdParty) RequestDeprovision(now time.Time) (changed bool) {
	if t.Status != StatusActive {
		return false
	}
	t.Status = StatusDeprovisioning
	t.UpdatedAt = now
	return true
}

// CompleteDeprovision finishes teardown: identity fields are nulled and the
// record becomes inactive. Only valid from deprovisioning.
func (t *ThirdParty) CompleteDeprovision(now time.Time) error {
	if t.Status != StatusDeprovisioning {
		return dErrors.New(dErrors.CodeInvariantViolation, "third party is not deprovisioning")
	}
	t.Status = StatusInactive
	t.ExternalIdentityRef = ""
	t.CredentialRef = ""
	t.UpdatedAt = now
	return nil
}

// DeriveContainerName builds the immutable container name from a company
// name: lowercased, every character outside [a-z0-9-] replaced with a hyphen,
// hyphens trimmed from the ends, capped at 50 characters, then prefixed.
func DeriveContainerName(prefix, companyName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(companyName))
	name = strings.Trim(name, "-")
	if len(name) > 50 {
		name = name[:50]
	}
	return prefix + name
}
