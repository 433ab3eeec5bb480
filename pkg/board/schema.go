package board

import "fmt"

// Redis channel pattern helpers
//
// All Pub/Sub channels are namespaced by deployment namespace so that
// multiple Corkd deployments can safely coexist on a single Redis server.
//
// Channel pattern: corkd:{namespace}:board:{board_id}:events

// EventsChannel returns the Pub/Sub channel name for a board's events.
// Pattern: corkd:{namespace}:board:{board_id}:events
func EventsChannel(namespace, boardID string) string {
	return fmt.Sprintf("corkd:%s:board:%s:events", namespace, boardID)
}
