// Package common contains shared constants and sentinel errors used across
// the backend and client components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultBucket is the object-storage bucket that holds user uploads.
const DefaultBucket = "uploads"
