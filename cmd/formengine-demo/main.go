// Command formengine-demo is a minimal echo server exercising one compiled
// journey end to end: GET /form renders a step (LOAD then ACCESS),
// POST /form/action runs the step's ACTION transition and re-renders,
// POST /form/submit runs its own in-scope validations then the SUBMIT
// transition. Grounded on the
// teacher's cmd/* entrypoints, which all follow bootstrap.Setup ->
// common/server.New -> graceful Start.
package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/common/bootstrap"
	"github.com/lyzr/formengine/common/server"
	"github.com/lyzr/formengine/engine"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/request"
)

const sessionCookie = "formengine_session"

// signupJourney builds the raw JSON tree for one demo journey: a single
// "signup" step collecting an email address, gated by an isValidEmail
// condition, redirecting to /done on successful submission.
func signupJourney() builder.M {
	emailValid := builder.Test(builder.Self(),
		builder.Function("isValidEmail", "CONDITION", builder.Self()))

	emailField := builder.FieldBlock("email", builder.M{
		"label": "Email address",
		"validate": []interface{}{
			builder.Validation(
				builder.Not(emailValid),
				"Enter a valid email address",
			),
		},
	})

	step := builder.Step("signup",
		emailField,
	)
	step["onLoad"] = builder.Load()
	step["onAccess"] = builder.Access(nil, nil, nil)
	step["onAction"] = builder.Action(nil)
	step["onSubmission"] = builder.Submit(true,
		builder.SubmitBranch(nil, []builder.M{builder.Redirect("/done", nil)}),
		builder.SubmitBranch(nil, nil),
		nil,
	)

	return builder.Journey("signup-journey", step)
}

// sessionStore is a process-local, in-memory stand-in for an embedder's
// AnswerStore (redisstore/pgstore in this repository are the durable
// alternatives) keyed by an opaque session id.
type sessionStore struct {
	mu   sync.Mutex
	data map[string]map[string]request.AnswerEntry
}

func newSessionStore() *sessionStore {
	return &sessionStore{data: make(map[string]map[string]request.AnswerEntry)}
}

func (s *sessionStore) load(id string) map[string]request.AnswerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers, ok := s.data[id]
	if !ok {
		return make(map[string]request.AnswerEntry)
	}
	out := make(map[string]request.AnswerEntry, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}

func (s *sessionStore) save(id string, snapshot map[string]eval.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]request.AnswerEntry, len(snapshot))
	for code, e := range snapshot {
		mutations := make([]request.AnswerMutation, len(e.Mutations))
		for i, m := range e.Mutations {
			mutations[i] = request.AnswerMutation{Value: m.Value, Source: m.Source}
		}
		out[code] = request.AnswerEntry{Current: e.Current, Mutations: mutations}
	}
	s.data[id] = out
}

func sessionID(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	return id
}

func main() {
	ctx := context.Background()
	components, err := bootstrap.Setup(ctx, "formengine-demo")
	if err != nil {
		panic(err)
	}
	defer components.Logger.Info("shutting down")

	form, err := engine.Compile(signupJourney(), "signup", engine.WithTelemetry(components.Telemetry))
	if err != nil {
		components.Logger.Error("compile signup journey", "error", err)
		panic(err)
	}

	sessions := newSessionStore()

	e := echo.New()
	e.HideBanner = true

	e.GET("/form", func(c echo.Context) error {
		id := sessionID(c)
		adapter, err := request.NewEchoAdapter(c, sessions.load(id), nil)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		ec := eval.New(adapter, components.Functions, components.Logger)

		if r := form.Load(c.Request().Context(), ec); r.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": r.Err.Error()})
		}
		if r := form.Access(c.Request().Context(), ec); r.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": r.Err.Error()})
		}

		rendered := form.Render(c.Request().Context(), ec)
		sessions.save(id, ec.Answers.Snapshot())
		if rendered.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": rendered.Err.Error()})
		}
		return c.JSON(http.StatusOK, rendered.Value)
	})

	e.POST("/form/action", func(c echo.Context) error {
		id := sessionID(c)
		adapter, err := request.NewEchoAdapter(c, sessions.load(id), nil)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		ec := eval.New(adapter, components.Functions, components.Logger)

		if r := form.Action(c.Request().Context(), ec); r.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": r.Err.Error()})
		}

		rendered := form.Render(c.Request().Context(), ec)
		sessions.save(id, ec.Answers.Snapshot())
		if rendered.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": rendered.Err.Error()})
		}
		return c.JSON(http.StatusOK, rendered.Value)
	})

	e.POST("/form/submit", func(c echo.Context) error {
		id := sessionID(c)
		adapter, err := request.NewEchoAdapter(c, sessions.load(id), nil)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		ec := eval.New(adapter, components.Functions, components.Logger)

		rendered := form.Render(c.Request().Context(), ec)
		if rendered.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": rendered.Err.Error()})
		}
		submitValid := allValidationsPassed(rendered.Value)

		result := form.Submit(c.Request().Context(), ec, submitValid)
		sessions.save(id, ec.Answers.Snapshot())
		if result.IsError() {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"valid":  submitValid,
			"step":   rendered.Value,
			"result": result.Value,
		})
	})

	srv := server.New("formengine-demo", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server stopped", "error", err)
	}
}

// allValidationsPassed walks a rendered step's block properties looking for
// any validation result with "passed": false. This is a minimal stand-in for
// whatever in-scope-validation pass a real host runs before SUBMIT (spec
// §4.6 "the host has already run the step's in-scope validations").
func allValidationsPassed(rendered interface{}) bool {
	step, ok := rendered.(map[string]interface{})
	if !ok {
		return true
	}
	stepProps, _ := step["properties"].(map[string]interface{})
	blocks, _ := stepProps["blocks"].([]interface{})
	for _, b := range blocks {
		block, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		props, _ := block["properties"].(map[string]interface{})
		validations, _ := props["validate"].([]interface{})
		for _, v := range validations {
			result, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			if passed, ok := result["passed"].(bool); ok && !passed {
				return false
			}
		}
	}
	return true
}
