// Package http instruments HTTP servers and clients with otelhttp and wires
// the otelme span counter into request handling.
//
// # Server
//
//	mux.Handle("/orders", otelmehttp.Middleware(
//	    otelmehttp.WithCounter(tel.Counter),
//	    otelmehttp.WithBaggageAttributes(),
//	)(orders))
//
// Inside the handler, otelme.Tell(r.Context(), "orders.items").Add(n)
// counts into the counter given to WithCounter, scoped to the server span.
//
// # Client
//
//	client := otelmehttp.NewClient(30 * time.Second)
//
// Providers default to the OTel globals; WithTracerProvider,
// WithMeterProvider and WithPropagators override them.
package http
