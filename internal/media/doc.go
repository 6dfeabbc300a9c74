// Package media defines the encoded media asset model shared by the
// pipeline: immutable byte payloads with declared types, content sniffing,
// and base64 representations for the classification client.
package media
