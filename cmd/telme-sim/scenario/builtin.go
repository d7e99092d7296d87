package scenario

import "time"

// Checkout is an order placement: an HTTP request that prices the cart,
// reserves stock per item and charges the card, counting as it goes.
func Checkout() *Scenario {
	return &Scenario{
		Name:        "checkout",
		Description: "Order placement with per-item stock reservation and card charge",
		RootSpan: SpanTemplate{
			Name:     "POST /api/v1/orders",
			Kind:     SpanKindServer,
			Duration: Duration(180 * time.Millisecond),
			Attributes: map[string]string{
				"http.request.method":       "POST",
				"http.route":                "/api/v1/orders",
				"http.response.status_code": "201",
			},
			Events: []EventTemplate{
				{Name: "order.received", Attributes: map[string]string{"channel": "web"}},
			},
			Children: []SpanTemplate{
				{
					Name:     "price_cart",
					Kind:     SpanKindInternal,
					Duration: Duration(20 * time.Millisecond),
					Counters: []CounterTemplate{
						{Name: "cart.items", Amount: 1, Times: 3},
						{Name: "cart.total", Amount: 33.33, Times: 3},
					},
				},
				{
					Name:     "reserve_stock",
					Kind:     SpanKindClient,
					Duration: Duration(45 * time.Millisecond),
					Attributes: map[string]string{
						"rpc.system":  "grpc",
						"rpc.service": "Inventory",
						"rpc.method":  "Reserve",
					},
					Counters: []CounterTemplate{
						{Name: "stock.reserved", Amount: 1, Times: 3},
					},
					ErrorRate:   0.05,
					ErrorStatus: "insufficient stock",
				},
				{
					Name:     "charge_card",
					Kind:     SpanKindClient,
					Duration: Duration(90 * time.Millisecond),
					Attributes: map[string]string{
						"payment.currency": "USD",
					},
					Logs: []LogTemplate{
						{Level: "INFO", Message: "charging card", Attributes: map[string]string{"payment.method": "visa"}},
					},
					Events: []EventTemplate{
						{Name: "payment.authorized"},
					},
					ErrorRate:   0.02,
					ErrorStatus: "card declined",
				},
			},
		},
	}
}

// Import is a batch file import that counts accepted and rejected rows
// across chunk spans.
func Import() *Scenario {
	chunk := SpanTemplate{
		Name:     "import_chunk",
		Kind:     SpanKindInternal,
		Duration: Duration(30 * time.Millisecond),
		Counters: []CounterTemplate{
			{Name: "rows.accepted", Amount: 100, Times: 4},
			{Name: "rows.rejected", Amount: 1, Times: 2},
			{Name: "rows.pending", Amount: -50, Times: 1},
		},
		Logs: []LogTemplate{
			{Level: "WARN", Message: "rejected rows in chunk"},
		},
	}

	return &Scenario{
		Name:        "import",
		Description: "Batch import consuming a queue message and writing chunks",
		RootSpan: SpanTemplate{
			Name:     "process import.requested",
			Kind:     SpanKindConsumer,
			Duration: Duration(150 * time.Millisecond),
			Attributes: map[string]string{
				"messaging.system":           "nats",
				"messaging.destination.name": "import.requested",
			},
			Counters: []CounterTemplate{
				{Name: "chunks", Amount: 1, Times: 3},
			},
			Children: []SpanTemplate{chunk, chunk, chunk},
		},
	}
}

// HealthCheck is a single server span, handy for checking the exporter
// connection.
func HealthCheck() *Scenario {
	return &Scenario{
		Name:        "health-check",
		Description: "Single HTTP span for connectivity testing",
		RootSpan: SpanTemplate{
			Name:     "GET /health",
			Kind:     SpanKindServer,
			Duration: Duration(5 * time.Millisecond),
			Attributes: map[string]string{
				"http.request.method":       "GET",
				"http.route":                "/health",
				"http.response.status_code": "200",
			},
			Counters: []CounterTemplate{
				{Name: "health.probes", Amount: 1},
			},
		},
	}
}
