package reactive

import "github.com/quartzdag/quartz/internal"

// EffectOptions configures Effect: lazy, scheduler, scope,
// allowRecurse, plus onStop/onTrack/onTrigger debug hooks.
type EffectOptions struct {
	Lazy         bool
	Scheduler    func()
	Scope        *EffectScope
	AllowRecurse bool
	OnStop       func()
	OnTrack      func(internal.TrackEvent)
	OnTrigger    func(internal.TriggerEvent)
}

// Runner is the handle returned by Effect: calling Run re-invokes fn
// directly, bypassing the scheduler.
type Runner struct {
	node *internal.EffectNode
}

// Run re-invokes the effect's fn directly.
func (r *Runner) Run() { r.node.Run() }

// Stop tears down the effect.
func (r *Runner) Stop() { r.node.Stop() }

// Effect wraps fn in a tracked EffectNode and, unless Lazy, runs it
// immediately once.
func Effect(fn func(), opts ...EffectOptions) *Runner {
	var o EffectOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	node := internal.NewEffectNode(fn)
	node.Scheduler = o.Scheduler
	node.AllowRecurse = o.AllowRecurse
	node.OnStop = o.OnStop
	node.OnTrack = o.OnTrack
	node.OnTrigger = o.OnTrigger

	scope := o.Scope
	if scope == nil {
		scope = currentEffectScope
	}
	if scope != nil {
		scope.scope.TrackEffect(node)
	}

	if parent := internal.ActiveEffect(); parent != nil {
		internal.RegisterChild(parent, node)
	}

	r := &Runner{node: node}
	if !o.Lazy {
		r.Run()
	}
	return r
}

// Stop tears down the effect behind r.
func Stop(r *Runner) { r.Stop() }

// PauseTracking, EnableTracking, and ResetTracking re-export the
// tracking-core's global pause/resume stack.
func PauseTracking()  { internal.PauseTracking() }
func EnableTracking() { internal.EnableTracking() }
func ResetTracking()  { internal.ResetTracking() }

// SetWarnHandler installs the sink used for development-only
// diagnostics.
func SetWarnHandler(fn func(string)) { internal.SetWarnHandler(fn) }

// EffectScope groups effects so they can be torn down together.
type EffectScope struct {
	scope *internal.Scope
}

var currentEffectScope *EffectScope

// NewEffectScope creates a scope. detached=true makes it a root with
// no parent, even if called while another scope is active.
func NewEffectScope(detached bool) *EffectScope {
	return &EffectScope{scope: internal.NewScope(detached)}
}

// Run executes fn with this scope active: effects created by Effect
// during fn (without an explicit Scope option) are attached to it.
func (s *EffectScope) Run(fn func()) {
	prev := currentEffectScope
	currentEffectScope = s
	defer func() { currentEffectScope = prev }()
	s.scope.Run(fn)
}

// Stop tears down every effect and child scope owned by s.
func (s *EffectScope) Stop() { s.scope.Stop() }

// OnScopeDispose registers a cleanup to run when the active scope
// stops. A no-op if no scope is active.
func OnScopeDispose(fn func()) {
	if currentEffectScope != nil {
		currentEffectScope.scope.OnCleanup(fn)
	}
}
