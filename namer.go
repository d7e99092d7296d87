package otelme

// SpanNamer defines how operation names are transformed into span names.
type SpanNamer interface {
	Name(operation string) string
}

// DefaultNamer returns operation names unchanged, as OTel semantic
// conventions recommend.
type DefaultNamer struct{}

// Name returns the operation name as is.
func (DefaultNamer) Name(operation string) string {
	return operation
}

// PrefixNamer prepends Prefix and a dot to every operation name.
// Example: PrefixNamer{Prefix: "billing"} names "charge" as "billing.charge".
type PrefixNamer struct {
	Prefix string
}

// Name returns operation with the prefix applied. An empty prefix is a no-op.
func (n PrefixNamer) Name(operation string) string {
	if n.Prefix == "" {
		return operation
	}

	return n.Prefix + "." + operation
}
