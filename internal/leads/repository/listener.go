package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertChannel is the NOTIFY channel fed by the trg_lead_inserted trigger.
const InsertChannel = "lead_inserted"

// SubscribeInserts holds a dedicated connection in LISTEN mode and calls
// onInsert for every new lead id until ctx is cancelled. Delivery is
// fire-and-forget; payloads that are not ids are skipped.
func (r *Repository) SubscribeInserts(ctx context.Context, onInsert func(context.Context, uuid.UUID)) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+InsertChannel); err != nil {
		return fmt.Errorf("listen %s: %w", InsertChannel, err)
	}
	defer func() {
		if conn.Conn().IsClosed() {
			return
		}
		unlistenCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, _ = conn.Exec(unlistenCtx, "UNLISTEN "+InsertChannel)
	}()

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("wait for %s: %w", InsertChannel, err)
		}
		id, err := uuid.Parse(notification.Payload)
		if err != nil {
			continue
		}
		onInsert(ctx, id)
	}
}
