package planner

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/quasar-analytics/quasar/core/qsu"
)

// HostEffects are the effects the core requires from its host (spec.md
// §6): a name generator, and an optional debug sink the core calls
// between every pass. A nil Debug is replaced with a no-op.
type HostEffects struct {
	Names *qsu.NameGenerator
	// Debug renders an intermediate graph; the host may ignore it.
	Debug func(prefix string, g qsu.Graph)
}

// Context threads the state a pass needs across the pipeline: the name
// generator, a logger, and an optional tracer for the between-pass debug
// hook — replacing the source's StateT[QAuth] ∘ StateT[RevIdx] ∘ F monad
// stack with the explicit mutable-context value spec.md §9 recommends.
type Context struct {
	Names  *qsu.NameGenerator
	Log    *logrus.Entry
	Tracer opentracing.Tracer
	debug  func(prefix string, g qsu.Graph)
}

// NewContext builds a Context from HostEffects, filling in a discard
// logger and a no-op tracer/debug sink when the host didn't supply one.
func NewContext(effects HostEffects) *Context {
	log := logrus.New()
	log.Out = io.Discard // host wires Log.Logger.Out itself if it wants pass traces surfaced
	entry := logrus.NewEntry(log)

	debug := effects.Debug
	if debug == nil {
		debug = func(string, qsu.Graph) {}
	}

	names := effects.Names
	if names == nil {
		names = qsu.NewNameGenerator()
	}

	return &Context{
		Names:  names,
		Log:    entry,
		Tracer: opentracing.NoopTracer{},
		debug:  debug,
	}
}

// Trace renders the graph via both the logrus debug sink and an
// opentracing span log, the concrete form of the "debug(prefix, value)"
// hook spec.md §6 requires the core to call between every pass.
func (c *Context) Trace(passName string, g qsu.Graph) {
	c.Log.WithField("pass", passName).WithField("vertices", len(g.Vertices)).Debug("pass boundary")
	span := c.Tracer.StartSpan(passName)
	defer span.Finish()
	span.LogKV("root", g.Root.String(), "vertices", len(g.Vertices))
	c.debug(passName, g)
}

// Fresh mints a new Symbol via the Context's NameGenerator.
func (c *Context) Fresh() qsu.Symbol { return c.Names.Fresh() }
