// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for talking to the
// remote sync endpoint.
//
// The primary abstraction is [RemoteTransport], which decouples the sync
// services from the underlying protocol. The package currently ships a WebDAV
// implementation ([NewWebDAVTransport]) that lays records out as one JSON
// object per record under <dir>/<entity_type>/<id>.json.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/jk278/lifetracker/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_transport_mock.go -package=mock

// RemoteTransport defines protocol-agnostic access to the remote copy of the
// record set. Implementations are responsible for serialisation,
// authentication, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// Every listed object carries the content hash of its payload so that the
// change detector can compare sides without downloading bodies. A transport
// that cannot recover the hash cheaply returns the object with an empty Hash
// and callers fall back to Get.
type RemoteTransport interface {
	// TestConnection verifies that the endpoint is reachable and the
	// credentials are accepted, without transferring record data. Returns
	// [ErrUnauthorized] when the credentials are rejected.
	TestConnection(ctx context.Context) error

	// EnsureLayout creates the remote directory tree (the base directory and
	// one subdirectory per entity type). It is idempotent.
	EnsureLayout(ctx context.Context) error

	// List enumerates all record objects below the base directory, one
	// lightweight descriptor per record. No payloads are downloaded.
	List(ctx context.Context) ([]models.RemoteObject, error)

	// Get downloads and decodes the record stored at path. Returns
	// [ErrNotFound] if the object disappeared since it was listed.
	Get(ctx context.Context, path string) (models.RecordSnapshot, error)

	// Put uploads the record, overwriting any previous object for the same
	// id, and returns the resulting remote descriptor.
	Put(ctx context.Context, record models.RecordSnapshot) (models.RemoteObject, error)

	// Delete removes the object at path. Deleting an object that is already
	// gone is not an error.
	Delete(ctx context.Context, path string) error
}
