// Package wire streams the mutations of an in-memory surface to websocket
// clients.
//
// A Surface records mutations like surface.Memory. Flush sends the
// mutations recorded since the previous flush to every connected client
// as one JSON frame:
//
//	{"type":"ops","seq":3,"ops":[{"op":"SetText","h":7,"value":"1"}]}
//
// New clients first receive a snapshot frame with the whole tree. With
// WithMergeFrames, Flush sends a JSON merge patch against the previous
// snapshot instead of the op list.
//
// Clients send events back as
//
//	{"type":"event","event":{"type":"click","target":7}}
//
// which are delivered to the listener registered on the target unit.
package wire
