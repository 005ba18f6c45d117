// Package tokenstore provides persistent storage for the IGDB bearer token.
//
// Supports three storage backends with different security and deployment tradeoffs:
//   - File: JSON record ({"igdbToken": "..."}) with atomic writes and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//   - Env: Read-only environment variable access for pre-provisioned tokens
//
// A refreshed token can only be persisted by a writable backend (file or keyring).
package tokenstore
