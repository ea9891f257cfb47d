// Package domain defines the normalized event contracts and the interfaces
// that connect providers to the host application.
//
// No implementation code lives here - just contracts. Keeping the interfaces
// on the consumer side prevents circular imports between the connectors and
// the surfaces that consume their events.
package domain
