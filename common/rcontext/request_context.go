package rcontext

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/utilitybelt/mediakit/common/config"
)

func Initial() RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:  config.Get(),
	}.populate()
}

// ForTest builds a context around an explicit config, bypassing the
// on-disk singleton.
func ForTest(c *config.MediaKitConfig) RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"test": true}),
		Config:  c,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log    *logrus.Entry
	Config *config.MediaKitConfig
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, "mk.logger", c.Log)
	c.Context = context.WithValue(c.Context, "mk.config", c.Config)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, "mk.logger", log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  c.Config,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

func (c RequestContext) WithContext(ctx context.Context) RequestContext {
	return RequestContext{
		Context: ctx,
		Log:     c.Log,
		Config:  c.Config,
	}.populate()
}
