// Package cli provides the interactive pairlog terminal client.
//
// It wires the identity service, profile, partner linking, and the shared
// calendar into a REPL. Typical flow: sign up or log in, exchange secret
// codes to link with a partner, then mark days and view the merged
// calendar with 'mark' and 'cal'.
//
// The REPL is started via App.Run(ctx), which blocks until the user
// exits. The app is the single subscriber of the session event stream;
// a signed-out event drops it back to the login state.
package cli
