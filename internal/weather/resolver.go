package weather

// Resolver picks, for a native field, the reading of the assigned transmitter
// or else the first transmitter in scan order that reported it.
type Resolver struct {
	assignment Assignment
	order      []string
}

// NewResolver creates a Resolver. An empty order uses DefaultTransmitterOrder.
func NewResolver(assignment Assignment, order string) *Resolver {
	if order == "" {
		order = DefaultTransmitterOrder
	}
	ids := make([]string, 0, len(order))
	for _, r := range order {
		ids = append(ids, string(r))
	}
	return &Resolver{assignment: assignment, order: ids}
}

// Resolve returns the numeric value for nativeField, or false if no
// transmitter reported it.
func (r *Resolver) Resolve(ix *ReadingIndex, nativeField string) (float64, bool) {
	if tx, ok := r.assignment[nativeField]; ok {
		if raw, ok := ix.Get(tx, nativeField); ok {
			if v, ok := toFloat(raw); ok {
				return v, true
			}
		}
	}

	for _, tx := range r.order {
		raw, ok := ix.Get(tx, nativeField)
		if !ok {
			continue
		}
		if v, ok := toFloat(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// ResolveMetric resolves spec's native field and applies its scale factor.
func (r *Resolver) ResolveMetric(ix *ReadingIndex, spec MetricSpec) (float64, bool) {
	v, ok := r.Resolve(ix, spec.NativeField)
	if !ok {
		return 0, false
	}
	if spec.Scale != 0 {
		v *= spec.Scale
	}
	return v, true
}
