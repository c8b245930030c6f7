package market

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name to
// enable multiple Tradepost instances to safely coexist on a single Redis
// server.
//
// Key pattern: tradepost:{instance_name}:{entity}:{hex}
// Channel pattern: tradepost:{instance_name}:record_events

// RecordKey returns the Redis key holding the record at a derived address.
// Pattern: tradepost:{instance_name}:record:{address_hex}
func RecordKey(instanceName string, addr Address) string {
	return fmt.Sprintf("tradepost:%s:record:%s", instanceName, addr)
}

// CreatorTasksKey returns the Redis key of the per-creator task index SET.
// Members are task record addresses in hex. The index is read-side only; the
// record at the derived address stays authoritative.
// Pattern: tradepost:{instance_name}:tasks:{creator_hex}
func CreatorTasksKey(instanceName string, creator Identity) string {
	return fmt.Sprintf("tradepost:%s:tasks:%s", instanceName, creator)
}

// IdentitiesKey returns the Redis key of the instance-wide identity index SET.
// Members are the hex identities of every initialized user. Read-side only,
// used to resolve short identity prefixes in the CLI.
// Pattern: tradepost:{instance_name}:identities
func IdentitiesKey(instanceName string) string {
	return fmt.Sprintf("tradepost:%s:identities", instanceName)
}

// RecordEventsChannel returns the Pub/Sub channel name for record events.
// Pattern: tradepost:{instance_name}:record_events
func RecordEventsChannel(instanceName string) string {
	return fmt.Sprintf("tradepost:%s:record_events", instanceName)
}
