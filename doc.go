// Package auth implements authentication and authorization for the blog
// backend.
//
// Credentials:
//   - UserProvider verifies a username and password against bcrypt hashes
//     stored by the Users repository. Raw passwords are never persisted.
//   - RegisterUserHandler is a go-command handler that creates accounts in a
//     single transaction. Auther.Signup dispatches to it.
//
// Tokens:
//   - TokenServiceImpl signs HS256 access tokens carrying the username as
//     subject plus the user id and roles. Verification resolves keys by kid so
//     the signing key can be rotated with WithVerificationKey.
//   - Refresh tokens are opaque random strings persisted alongside their owner
//     and expiry. A refresh token past its expiry is deleted on first use.
//     The repository package provides a Redis backed RefreshTokenStore.
//
// Request identity:
//   - RouteAuthenticator.IdentityMiddleware verifies bearer tokens and binds
//     the Identity to the request context. Requests without a token continue
//     anonymously. Use IdentityFromContext or CurrentIdentity downstream.
//   - RequireIdentity and RequireRole reject requests before the handler runs.
//
// Ownership:
//   - AssertOwner compares the resource author id against the current
//     identity. Resources implement Owned.
//
// Errors are go-errors values carrying an HTTP status and a text code.
// WriteError renders them as {"code", "message"} bodies.
package auth
