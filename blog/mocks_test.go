package blog_test

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-router"
)

// unimplemented backs the router.Context methods the fake does not override.
// Calling one of them panics on the nil interface.
type unimplemented = router.Context

var _ router.Context = (*routerContext)(nil)

type routerContext struct {
	unimplemented
	params map[string]string
	ctx    context.Context
	body   []byte

	status   int
	response any
}

func newRouterContext(ctx context.Context) *routerContext {
	return &routerContext{
		params: map[string]string{},
		ctx:    ctx,
	}
}

func (c *routerContext) withParam(key, value string) *routerContext {
	c.params[key] = value
	return c
}

func (c *routerContext) withJSON(v any) *routerContext {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	c.body = raw
	return c
}

func (c *routerContext) Param(key string, defaultValue ...string) string {
	if v, ok := c.params[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
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

// decode round trips the recorded response into out
func (c *routerContext) decode(out any) error {
	raw, err := json.Marshal(c.response)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *routerContext) errorCode() string {
	var decoded struct {
		Code string `json:"code"`
	}
	if err := c.decode(&decoded); err != nil {
		return ""
	}
	return decoded.Code
}
