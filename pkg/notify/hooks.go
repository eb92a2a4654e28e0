package notify

import (
	"context"

	"github.com/samvad-hq/samvad-api-client/pkg/apiclient"
	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
)

// Hooks adapts f into client hooks that publish relogin and maintenance events.
func Hooks(f *Fanout, log Logger) apiclient.Hooks {
	log = ensureLogger(log)
	publish := func(typ string) func(context.Context, *apierror.Error) {
		return func(ctx context.Context, cause *apierror.Error) {
			evt := NewEvent(typ, cause)
			delivered, err := f.Publish(ctx, evt)
			if err != nil {
				log.WarnObj("session event publish failed", "notify_error", map[string]any{
					"event_type": typ,
					"url":        evt.URL,
					"delivered":  delivered,
					"error":      err.Error(),
				})
				return
			}
			log.InfoObj("session event published", "notify_event", map[string]any{
				"event_type": typ,
				"url":        evt.URL,
				"delivered":  delivered,
			})
		}
	}
	return apiclient.Hooks{
		OnReloginRequired: publish(EventReloginRequired),
		OnMaintenance:     publish(EventMaintenance),
	}
}
