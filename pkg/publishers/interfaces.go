package publishers

import "context"

// Publisher delivers profile events to one downstream sink (webhook, queue, topic).
// Sinks holding connections also implement io.Closer; Fanout.Close releases them.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
