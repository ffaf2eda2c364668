// Package dialog provides the per-user conversation sessions and the step
// engine that drives them. It is transport-agnostic: answers come in through
// Engine.Respond and replies go out through a chat.Outbox.
package dialog
