// Package sim implements the per-element simulation engines: a particle
// lifecycle engine (spawn, ballistic motion, expiry, same-tick respawn) and a
// flocking engine (separation/alignment/cohesion steering).
//
// Both engines follow the same execution model: element state lives in fixed
// buffers, and each tick runs one pass over all indices through a
// dispatch.Pool, with a full barrier before the buffers are read. Within a
// pass, each index writes only its own element; flocking reads of other
// elements go through snapshot buffers taken at the start of the pass.
//
// Configuration is validated once, at construction. A successfully
// constructed engine never fails a tick.
package sim

import "errors"

// ErrInvalidConfig is returned by engine constructors for configurations
// that violate a field constraint. The wrapped message names the field and
// the violated bound.
var ErrInvalidConfig = errors.New("invalid configuration")
