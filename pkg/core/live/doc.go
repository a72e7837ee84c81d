// Package live implements the duplex voice conversation core.
//
// A Session ties together three things: the microphone capture chain,
// the websocket transport speaking the bidirectional generation
// protocol, and the playback scheduler that plays model audio as it
// streams in. The session owns the state machine (idle, connecting,
// open, closing) and guarantees that teardown releases every resource
// exactly once regardless of how the conversation ends.
//
// The transport decodes server frames into Events; the session
// consumes them, feeds decoded audio to the scheduler, accumulates
// transcripts, and re-emits higher-level events for a UI to render.
package live
