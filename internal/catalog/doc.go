// Package catalog describes the operations the bridge exposes to a calling
// agent and turns an agent's named arguments into a positional worker call.
//
// Each Operation lists its parameters in wire order. The Dispatcher validates
// arguments, substitutes defaults, invokes the call and renders the outcome
// as a short human-readable summary. Validation failures never reach the
// request channel.
package catalog
