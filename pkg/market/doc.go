// Package market provides type-safe Go definitions, address derivation, and
// Redis schema patterns for the Tradepost task marketplace.
//
// # Overview
//
// Tradepost models a decentralized task marketplace: users initialize a
// profile, create tasks with a reward, assign them to other users, and
// completion adjusts the assignee's reputation. Every record (user profile or
// task) lives at a deterministically derived address inside a versioned,
// atomically committed ledger.
//
// # Core Concepts
//
// Identities are ed25519 public keys. They authenticate callers and scope
// record ownership: a user's profile address is derived from their identity,
// and a task's address is derived from its creator's identity plus a
// creator-scoped sequence id.
//
// UserProfiles track per-identity counters (tasks created, tasks completed)
// and a bounded reputation score. They are created exactly once per identity
// and mutated only by task lifecycle transitions.
//
// Tasks progress through a fixed four-state lifecycle:
//
//	open -> assigned -> completed
//	open -> cancelled
//
// Transitions are one-directional; the assignee is set exactly once at the
// open->assigned transition and never changes.
//
// # Address Derivation
//
// DeriveAddress and DeriveTaskAddress map (tag, owner[, seq]) to a stable
// 32-byte address via SHA-256 over length-framed input segments. The sequence
// id is framed as its canonical decimal text form; the same form is used on
// both the write path and the read path so a record written at an address can
// always be found again.
//
// # Redis Schema
//
// All Redis keys and channels are namespaced by instance name so multiple
// Tradepost instances can coexist on one Redis server:
//
// Records: tradepost:{instance_name}:record:{address_hex}
// Creator task index: tradepost:{instance_name}:tasks:{creator_hex}
// Record events: tradepost:{instance_name}:record_events
//
// # Design Principles
//
// - Type Safety: every enum and record has a Validate method
// - Determinism: identical derivation inputs always yield identical addresses
// - Isolation: instance namespacing prevents cross-instance interference
// - Simplicity: the package itself holds no state and opens no connections
package market
