package provisioning

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sftgate/internal/platform/tablestore"
	"sftgate/internal/registry/models"
	regstore "sftgate/internal/registry/store"
	"sftgate/internal/storage"
	audit "sftgate/pkg/platform/audit"
)

type captureEmitter struct {
	events []audit.Event
}

func (c *captureEmitter) Emit(_ context.Context, event audit.Event) {
	c.events = append(c.events, event)
}

func newWorkerFixture(t *testing.T) (*Worker, regstore.Store, *storage.Memory, *MemoryQueue, *captureEmitter) {
	t.Helper()
	store := regstore.NewTable(tablestore.NewMemory())
	blobs := storage.NewMemory()
	queue := NewMemoryQueue()
	emitter := &captureEmitter{}
	w := NewWorker(queue, store, blobs, emitter, slog.Default())
	return w, store, blobs, queue, emitter
}

func seedProvisioning(t *testing.T, store regstore.Store, id string) *models.ThirdParty {
	t.Helper()
	tp := &models.ThirdParty{
		ID:            id,
		CompanyName:   "Acme Corp",
		ContactEmail:  "ops@acme.test",
		ContainerName: "sft-acme-corp",
		Status:        models.StatusProvisioning,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Insert(context.Background(), tp))
	return tp
}

func TestProcess_ProvisionWithAutomation(t *testing.T) {
	w, store, blobs, _, emitter := newWorkerFixture(t)
	ctx := context.Background()
	seedProvisioning(t, store, "tp-1")

	err := w.Process(ctx, Message{
		Action:            ActionProvision,
		ThirdPartyID:      "tp-1",
		ContainerName:     "sft-acme-corp",
		AutomationEnabled: true,
	})
	require.NoError(t, err)

	ok, err := blobs.ContainerExists(ctx, "sft-acme-corp")
	require.NoError(t, err)
	assert.True(t, ok)

	tp, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, tp.Status)
	assert.True(t, tp.IsActive())
	assert.NotEmpty(t, tp.ExternalIdentityRef)
	assert.Contains(t, tp.ExternalIdentityRef, "sp-")
	assert.NotEmpty(t, tp.CredentialRef)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, audit.EventTenantProvisioned, emitter.events[0].Action)
	assert.Equal(t, "sft-acme-corp", emitter.events[0].Container)
}

func TestProcess_ProvisionWithoutAutomation(t *testing.T) {
	w, store, _, _, _ := newWorkerFixture(t)
	ctx := context.Background()
	seedProvisioning(t, store, "tp-1")

	err := w.Process(ctx, Message{
		Action:        ActionProvision,
		ThirdPartyID:  "tp-1",
		ContainerName: "sft-acme-corp",
	})
	require.NoError(t, err)

	tp, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, tp.Status)
	assert.Empty(t, tp.ExternalIdentityRef, "no identity without automation")
	assert.Empty(t, tp.CredentialRef)
}

func TestProcess_ProvisionDuplicateDeliveryIgnored(t *testing.T) {
	w, store, _, _, emitter := newWorkerFixture(t)
	ctx := context.Background()
	seedProvisioning(t, store, "tp-1")

	msg := Message{Action: ActionProvision, ThirdPartyID: "tp-1", ContainerName: "sft-acme-corp", AutomationEnabled: true}
	require.NoError(t, w.Process(ctx, msg))
	first, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)

	require.NoError(t, w.Process(ctx, msg))
	second, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)

	assert.Equal(t, first.ExternalIdentityRef, second.ExternalIdentityRef, "redelivery must not rotate the identity")
	assert.Len(t, emitter.events, 1)
}

func TestProcess_Deprovision(t *testing.T) {
	w, store, blobs, _, emitter := newWorkerFixture(t)
	ctx := context.Background()
	tp := seedProvisioning(t, store, "tp-1")

	require.NoError(t, w.Process(ctx, Message{
		Action: ActionProvision, ThirdPartyID: "tp-1", ContainerName: "sft-acme-corp", AutomationEnabled: true,
	}))

	fresh, err := store.GetByID(ctx, tp.ID)
	require.NoError(t, err)
	require.True(t, fresh.RequestDeprovision(time.Now()))
	require.NoError(t, store.Update(ctx, fresh))

	require.NoError(t, w.Process(ctx, Message{
		Action: ActionDeprovision, ThirdPartyID: "tp-1", ContainerName: "sft-acme-corp",
	}))

	gone, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, gone.Status)
	assert.Empty(t, gone.ExternalIdentityRef)
	assert.Empty(t, gone.CredentialRef)

	// Contents stay put for the retention window.
	ok, err := blobs.ContainerExists(ctx, "sft-acme-corp")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, emitter.events, 2)
	assert.Equal(t, audit.EventTenantDeprovisioned, emitter.events[1].Action)
}

func TestProcess_DeprovisionBeforeDeprovisioningIgnored(t *testing.T) {
	w, store, _, _, _ := newWorkerFixture(t)
	ctx := context.Background()
	seedProvisioning(t, store, "tp-1")

	require.NoError(t, w.Process(ctx, Message{
		Action: ActionDeprovision, ThirdPartyID: "tp-1",
	}))

	tp, err := store.GetByID(ctx, "tp-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProvisioning, tp.Status, "status must not move")
}

func TestProcess_DeprovisionUnknownRecordDropped(t *testing.T) {
	w, _, _, _, _ := newWorkerFixture(t)
	err := w.Process(context.Background(), Message{Action: ActionDeprovision, ThirdPartyID: "tp-missing"})
	assert.NoError(t, err)
}

func TestProcess_UnknownActionDropped(t *testing.T) {
	w, _, _, _, _ := newWorkerFixture(t)
	err := w.Process(context.Background(), Message{Action: "reticulate"})
	assert.NoError(t, err)
}

func TestDrain_EmptiesQueue(t *testing.T) {
	w, store, _, queue, _ := newWorkerFixture(t)
	ctx := context.Background()
	seedProvisioning(t, store, "tp-1")
	seedProvisioning(t, store, "tp-2")

	require.NoError(t, queue.Enqueue(ctx, Message{Action: ActionProvision, ThirdPartyID: "tp-1", ContainerName: "sft-acme-corp"}))
	require.NoError(t, queue.Enqueue(ctx, Message{Action: ActionProvision, ThirdPartyID: "tp-2", ContainerName: "sft-acme-corp"}))

	require.NoError(t, w.drain(ctx))
	assert.Zero(t, queue.Len())

	for _, id := range []string{"tp-1", "tp-2"} {
		tp, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, tp.Status)
	}
}
