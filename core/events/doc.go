// Package events defines the canonical session event contract.
//
// Every inbound wire frame is normalized into exactly one of these events at
// the transport boundary, before any session logic runs. Logically identical
// facts announced by more than one wire shape (tool calls in particular)
// collapse into a single event type here, so downstream code never inspects
// raw frame shapes.
//
// Event kinds are grouped by namespaces:
//
//   - session.*    handshake lifecycle
//   - speech.*     server-side voice-activity detection
//   - response.*   assistant response lifecycle
//   - transcript.* streamed assistant transcript
//   - tool_call.*  tool call/output sightings
//   - user.*       finalized user utterances
package events
