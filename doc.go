// Package identity manages the authentication lifecycle for membership
// client applications: credential validation, the process-wide session
// observer, and the privileged backend proxy that talks to the external
// identity provider.
//
// Session lifecycle:
//   - SessionWatcher subscribes to the provider's session-change stream and
//     owns the single current Session value. Every other component reads the
//     session through the watcher; nothing else may mutate it. Notifications
//     are applied and fanned out in provider arrival order.
//   - AuthFlow centralizes the client-observed transition graph
//     (unauthenticated, pending, authenticated) so a credential form cannot
//     race two submissions into the provider at once.
//
// Privileged operations:
//   - SessionProxy performs registration, login, logout, and password reset
//     against the Provider, and writes the initial membership profile on
//     registration. It is the only component allowed to hold the provider's
//     elevated credentials; clients talk to it through the HTTP controller
//     and never see them.
//
// Errors:
//   - Every provider failure is translated through a single mapper into a
//     closed taxonomy (Error). Unknown provider codes fall through to
//     KindUnknown with the raw message preserved, never silently dropped.
package identity
