// Package inject provides write instrumentation: adding scaled steering
// vectors into activations during forward passes.
//
// Injector applies one behavior's vectors at fixed points; MultiInjector
// composes several behaviors with independent strength control. In both, the
// hook reads strength from a small mutable state cell on every forward pass,
// so strengths and enable flags change at runtime without re-registering
// hooks. Vectors meeting at the same point sum — injection is linear.
//
// Injection is the only component permitted to change the model's runtime
// output. It never alters stored weights, and Detach removes the mutation
// entirely, restoring pass-through behavior.
package inject
