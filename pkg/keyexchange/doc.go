// Package keyexchange provides the default session cipher for peers.
//
// Each side generates an X25519 key pair and sends its public key. The
// shared secret is expanded with HKDF-SHA256 into an AES-256-GCM key. Every
// sealed payload carries its own random nonce as a prefix, so the same
// Exchange type serves both the client and the server end.
package keyexchange
