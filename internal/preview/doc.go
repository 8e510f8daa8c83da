// Package preview serves a scene over HTTP and WebSocket.
//
// Routes:
//
//	GET /          the scene as a full HTML document
//	GET /html      the rendered fragment only
//	GET /metrics   Prometheus metrics, when a gatherer is configured
//	GET /ws        a protocol frame stream of the scene
//
// Both HTML routes accept ?step=N to stop after N steps; by default every
// step is applied.
//
// Each WebSocket connection replays the scene with its own engine. The
// first frame is the mounted tree. Every step then sends one FrameOps per
// sibling group that changed, followed by a FrameTree flagged
// FlagFinal|FlagResync. Property and text updates travel only in that
// closing tree. A failed step sends a FrameError carrying the error code.
// The server closes the connection normally after the last step.
package preview
