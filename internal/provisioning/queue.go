// Package provisioning carries the asynchronous workflow that turns a
// registered third party into an active tenant with isolated storage and an
// attached automation identity, and tears it down again.
package provisioning

import "context"

// Action selects what the worker should do with a message.
type Action string

const (
	ActionProvision   Action = "provision"
	ActionDeprovision Action = "deprovision"
)

// Message is a provisioning work item enqueued by the onboarding flow.
type Message struct {
	Action            Action `json:"action"`
	ThirdPartyID      string `json:"third_party_id"`
	ContainerName     string `json:"container_name"`
	AutomationEnabled bool   `json:"automation_enabled"`
}

// Queue is the work-queue collaborator between onboarding and the worker.
type Queue interface {
	// Enqueue appends a message.
	Enqueue(ctx context.Context, msg Message) error

	// Dequeue pops the oldest message, reporting ok=false when the queue is
	// empty.
	Dequeue(ctx context.Context) (Message, bool, error)
}
