// Package pipeline wires configuration, logging and the asset-record store
// around the media processors. The CLI drives one Pipeline per invocation;
// outputs destined for the classification client are exposed as base64 data
// URLs alongside the raw bytes.
package pipeline
