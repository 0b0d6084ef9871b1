package repokit

// Binder binds a domain repo to a Queryer, either the pool or a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to a Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// RequireQueryer panics on a nil q so a missing store fails at wiring time
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind checks q and binds b to it
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}
