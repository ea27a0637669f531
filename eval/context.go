package eval

import (
	"github.com/lyzr/formengine/common/logger"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/registry"
	"github.com/lyzr/formengine/request"
)

// Context is the per-request ThunkEvaluationContext (spec §2 step 9): the
// request adapter, the answer store, the scope stack, and the cache. One
// Context is constructed per request and discarded at its end — there is no
// shared mutable state across requests in the core (spec §5).
type Context struct {
	Adapter   request.Adapter
	Answers   *AnswerStore
	Scope     *ScopeStack
	Cache     *Cache
	Functions *registry.FunctionRegistry
	Log       *logger.Logger

	// Data mirrors RequestAdapter.Data() but is the live, mutable copy
	// onLoad/onAction/onSubmission effects write into during the request.
	Data map[string]interface{}

	// OverlayGen allocates ids for every node a RuntimeOverlay materializes
	// during this request (spec §4.8 Iterate). One generator per request
	// keeps every overlay-minted id within it unique; see overlay.New.
	OverlayGen *node.IDGenerator
}

// New constructs a fresh per-request Context from an Adapter and the
// process-wide function registry.
func New(adapter request.Adapter, functions *registry.FunctionRegistry, log *logger.Logger) *Context {
	seed := make(map[string]Entry, len(adapter.Answers()))
	for code, e := range adapter.Answers() {
		mutations := make([]Mutation, len(e.Mutations))
		for i, m := range e.Mutations {
			mutations[i] = Mutation{Value: m.Value, Source: m.Source}
		}
		seed[code] = Entry{Current: e.Current, Mutations: mutations}
	}

	data := make(map[string]interface{}, len(adapter.Data()))
	for k, v := range adapter.Data() {
		data[k] = v
	}

	return &Context{
		Adapter:    adapter,
		Answers:    NewAnswerStore(seed),
		Scope:      NewScopeStack(),
		Cache:      NewCache(),
		Functions:  functions,
		Log:        log,
		Data:       data,
		OverlayGen: node.NewOverlayGenerator(),
	}
}

// SetAnswer commits a mutation and invalidates the cached ANSWER_LOCAL /
// ANSWER_REMOTE results for the field, per the invalidation rule in §5. The
// caller supplies the pseudo-node ids registered for this field code (there
// may be zero, one ANSWER_LOCAL, and/or one ANSWER_REMOTE, depending on
// which steps reference it).
func (c *Context) SetAnswer(code string, value interface{}, source string, affectedIDs []node.ID) {
	c.Answers.Set(code, value, source)
	if len(affectedIDs) == 0 {
		return
	}
	c.Cache.Invalidate(affectedIDs)
}
