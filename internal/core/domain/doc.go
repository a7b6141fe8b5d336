// Package domain contains the core business entities for fathom.
// It has no dependencies on other layers; adapters and services depend
// on it, never the other way around.
package domain
