package auth_test

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-router"
)

// unimplemented backs the router.Context methods the fake does not override.
// Calling one of them panics on the nil interface.
type unimplemented = router.Context

var _ router.Context = (*routerContext)(nil)

// routerContext implements the parts of router.Context used by the
// middlewares and controllers
type routerContext struct {
	unimplemented
	headers map[string]string
	params  map[string]string
	locals  map[any]any
	ctx     context.Context
	body    []byte

	status   int
	response any
	// next runs when a middleware calls Next
	next       func(c *routerContext) error
	nextCalled bool
}

func newRouterContext() *routerContext {
	return &routerContext{
		headers: map[string]string{},
		params:  map[string]string{},
		locals:  map[any]any{},
		ctx:     context.Background(),
	}
}

func (c *routerContext) withHeader(key, value string) *routerContext {
	c.headers[key] = value
	return c
}

func (c *routerContext) withBearer(token string) *routerContext {
	return c.withHeader(router.HeaderAuthorization, "Bearer "+token)
}

func (c *routerContext) withJSON(v any) *routerContext {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	c.body = raw
	return c
}

func (c *routerContext) withParam(key, value string) *routerContext {
	c.params[key] = value
	return c
}

func (c *routerContext) Header(key string) string { return c.headers[key] }

func (c *routerContext) Param(key string, defaultValue ...string) string {
	if v, ok := c.params[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *routerContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		c.locals[key] = value[0]
		return value[0]
	}
	return c.locals[key]
}

func (c *routerContext) Context() context.Context { return c.ctx }

func (c *routerContext) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *routerContext) Bind(v any) error {
	if len(c.body) == 0 {
		return nil
	}
	return json.Unmarshal(c.body, v)
}

func (c *routerContext) JSON(code int, val any) error {
	c.status = code
	c.response = val
	return nil
}

func (c *routerContext) NoContent(code int) error {
	c.status = code
	return nil
}

func (c *routerContext) Next() error {
	c.nextCalled = true
	if c.next != nil {
		return c.next(c)
	}
	return nil
}

// errorCode returns the code field of the recorded JSON response
func (c *routerContext) errorCode() string {
	raw, err := json.Marshal(c.response)
	if err != nil {
		return ""
	}
	var decoded struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ""
	}
	return decoded.Code
}
