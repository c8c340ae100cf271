// Package dedupe remembers recently delivered push-stream message IDs so a
// subscriber sees each notification once, even when the remote replays it
// after a reconnect.
package dedupe
