// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the tracker application runtime.
//
// It wires configuration, the local SQLite store, the sync services and the
// background sync job into a single process lifecycle.
package client
