// Package profile implements the Client Profile and Prekey Profile
// long-lived identity descriptors: build, sign, validate, and expire.
package profile
