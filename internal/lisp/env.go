package lisp

import "fmt"

// Env represents a scope for variable bindings
type Env struct {
	store map[string]Value
	outer *Env // parent scope for nested scopes
}

// NewEnv creates a new environment
func NewEnv() *Env {
	return &Env{
		store: make(map[string]Value),
		outer: nil,
	}
}

// NewEnclosedEnv creates a new environment enclosed by an outer environment
func NewEnclosedEnv(outer *Env) *Env {
	env := NewEnv()
	env.outer = outer
	return env
}

// Get retrieves a value from the environment by name.
// It searches the current scope and all parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return value, ok
}

// Define creates or replaces a binding in the current scope
func (e *Env) Define(name string, value Value) {
	e.store[name] = value
}

// Update updates an existing binding in the innermost scope that holds it.
// It returns an error if the binding doesn't exist anywhere.
func (e *Env) Update(name string, value Value) error {
	if _, ok := e.store[name]; ok {
		e.store[name] = value
		return nil
	}
	if e.outer != nil {
		return e.outer.Update(name, value)
	}
	return fmt.Errorf("unbound symbol: %s", name)
}

// Has checks if a binding exists in the current scope or any parent scope
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Keys returns all binding names in the current scope (not including parent scopes)
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	return keys
}
