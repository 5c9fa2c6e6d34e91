// Package credential supplies the bearer token attached to backend API calls.
//
// A Provider returns the current access token. Where the token comes from
// depends on the execution side: the server forwards the token of the
// incoming request (Middleware plus FromIncomingRequest) or authenticates as
// itself through OAuth2 client credentials, while a client uses whatever
// session it holds. Isomorphic combines one provider per side.
//
// Callers that must never fail use Get: a provider error is logged and turns
// into an empty token, so the request goes out unauthenticated and the backend
// decides. ErrNoSession marks the ordinary "not signed in" case and is logged
// at debug level only.
package credential
