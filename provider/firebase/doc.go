// Package firebase implements identity.Provider against the Firebase
// Identity Toolkit REST API.
//
// The adapter owns the API key (a privileged credential) and is meant to be
// constructed inside the backend proxy only. Provider failures are reported
// as *identity.ProviderError values carrying the stable code set the error
// taxonomy mapper understands; Identity Toolkit status strings such as
// EMAIL_NOT_FOUND are never exposed past this package.
//
// Session-change notifications: the REST surface has no push channel, so
// the adapter emits a notification whenever its own lifecycle operations
// change the signed-in subject (sign-up, sign-in, invalidation). Ordering
// follows the order those operations complete.
//
// TokenValidator verifies Firebase-issued ID tokens against Google's
// securetoken JWKS, for deployments that forward the token to other
// services.
package firebase
