package request

import (
	"github.com/labstack/echo/v4"
)

// EchoAdapter implements Adapter over an echo.Context, the HTTP framework
// this repository's demo server and illustrative embedder use.
type EchoAdapter struct {
	c       echo.Context
	post    map[string]interface{}
	query   map[string]interface{}
	params  map[string]string
	state   map[string]interface{}
	answers map[string]AnswerEntry
	data    map[string]interface{}
}

// NewEchoAdapter builds an Adapter from an echo.Context. Form values are
// parsed eagerly; answers are supplied by the caller, since loading them is
// the embedder's responsibility (spec §6, Non-goals: "persistent storage of
// answers").
func NewEchoAdapter(c echo.Context, answers map[string]AnswerEntry, state map[string]interface{}) (*EchoAdapter, error) {
	if err := c.Request().ParseForm(); err != nil {
		return nil, err
	}

	post := make(map[string]interface{}, len(c.Request().PostForm))
	for k, values := range c.Request().PostForm {
		if len(values) == 1 {
			post[k] = values[0]
		} else {
			asAny := make([]interface{}, len(values))
			for i, v := range values {
				asAny[i] = v
			}
			post[k] = asAny
		}
	}

	query := make(map[string]interface{}, len(c.QueryParams()))
	for k, values := range c.QueryParams() {
		if len(values) == 1 {
			query[k] = values[0]
		} else {
			asAny := make([]interface{}, len(values))
			for i, v := range values {
				asAny[i] = v
			}
			query[k] = asAny
		}
	}

	params := make(map[string]string)
	for _, name := range c.ParamNames() {
		params[name] = c.Param(name)
	}

	if answers == nil {
		answers = make(map[string]AnswerEntry)
	}
	if state == nil {
		state = make(map[string]interface{})
	}

	return &EchoAdapter{
		c:       c,
		post:    post,
		query:   query,
		params:  params,
		state:   state,
		answers: answers,
		data:    make(map[string]interface{}),
	}, nil
}

func (a *EchoAdapter) Post() map[string]interface{}         { return a.post }
func (a *EchoAdapter) Query() map[string]interface{}        { return a.query }
func (a *EchoAdapter) Params() map[string]string            { return a.params }
func (a *EchoAdapter) Session() interface{}                 { return a.c.Get("session") }
func (a *EchoAdapter) State() map[string]interface{}        { return a.state }
func (a *EchoAdapter) Answers() map[string]AnswerEntry       { return a.answers }
func (a *EchoAdapter) Data() map[string]interface{}          { return a.data }
