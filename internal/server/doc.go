// Package server provides the loopback HTTP server for the one-time Spotify
// authorization flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs `encore spotify auth`, a temporary HTTP server starts on
// the configured host and port, the browser opens the Spotify consent page,
// the handler receives the callback, and [Serve] shuts the server down once
// the command has stored the refresh token.
package server
