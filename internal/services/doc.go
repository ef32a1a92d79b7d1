// Package services provides HTTP clients for the external APIs the playlist
// pipeline consumes.
//
// Two interfaces define the surface the rest of the application uses:
//
//   - [SetlistProvider] : concert setlist lookup, implemented by [SetlistFMService]
//   - [Catalog] : track search and playlist mutation, implemented by [SpotifyService]
//
// [SetlistFMService] authenticates with an API key and rate limits requests
// to the free tier's allowance. [SpotifyService] authenticates through OAuth2
// with a stored refresh token; the one-time authorization flow is exposed via
// the [OAuthService] interface and driven by the server package's callback
// handler.
//
// All methods accept a context for cancellation and return errors wrapping
// the sentinel values in the shared package, so callers can distinguish
// soft failures (shared.ErrNoSetlistFound) from fatal ones (shared.ErrAuthFailed).
package services
