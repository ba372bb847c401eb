// Package audit captures security-relevant events emitted by the
// authorization gate and the provisioning workflow. The sink is best-effort:
// emission failures never affect the decision or operation they describe.
package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    string
	CallerID  string
	Container string
	Reason    string
	RequestID string
	ClientIP  string
	UserAgent string
}

const (
	EventAccessDenied        = "container_access_denied"
	EventAccessNoIdentity    = "container_access_no_identity"
	EventTenantProvisioned   = "tenant_provisioned"
	EventTenantDeprovisioned = "tenant_deprovisioned"
)
