package registry

import (
	"errors"
	"fmt"
	"net/http"

	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote/errcode"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when nothing exists at the reference.
	ErrNotFound = errors.New("registry: not found")

	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = errors.New("registry: unauthorized")

	// ErrInvalidReference is returned when a reference string is malformed
	// or lacks a required tag.
	ErrInvalidReference = errors.New("registry: invalid reference")

	// ErrInvalidManifest is returned when a manifest does not describe an archive.
	ErrInvalidManifest = errors.New("registry: invalid archive manifest")

	// ErrMissingIndex is returned when the manifest has no index layer.
	ErrMissingIndex = errors.New("registry: missing index layer")

	// ErrMissingData is returned when the manifest has no archive layer.
	ErrMissingData = errors.New("registry: missing archive layer")

	// ErrDigestMismatch is returned when fetched content does not match its
	// expected digest.
	ErrDigestMismatch = errors.New("registry: digest mismatch")

	// ErrTooLarge is returned when a layer exceeds the configured size limit.
	ErrTooLarge = errors.New("registry: layer too large")
)

// mapError translates ORAS errors to the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errdef.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, content.ErrMismatchedDigest) {
		return fmt.Errorf("%w: %v", ErrDigestMismatch, err)
	}
	var errResp *errcode.ErrorResponse
	if errors.As(err, &errResp) {
		switch errResp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return err
}
