package repositories

import "context"

// LogRepository records maintenance heartbeats, keeping the hosted
// database from pausing on inactivity.
type LogRepository interface {
	Heartbeat(ctx context.Context) error
}
