package api

import "context"

// Extension is the entry point of a bud. Activate runs once, in load order,
// after every bud it depends on has activated. Returning an error marks the
// bud as not activated; content it already changed stays changed.
type Extension interface {
	Activate(ctx context.Context, v *Venus) error
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(ctx context.Context, v *Venus) error

func (f ExtensionFunc) Activate(ctx context.Context, v *Venus) error { return f(ctx, v) }
