// SPDX-License-Identifier: MPL-2.0

// Package issue provides errors that carry the failed operation, the resource
// involved and remediation hints, so the CLI can print something a user can
// act on instead of a bare error chain.
package issue
