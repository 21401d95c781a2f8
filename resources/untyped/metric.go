package untyped

import (
	"context"
	"net/http"

	"github.com/verge-io/go-verge-client/core"
)

type Metric struct {
	*core.VergeResource
}

// HistoryWithContext fetches a metric history series. History endpoints serve
// their samples as application/x-msgpack, which the session decodes into the
// usual RecordSet.
func (m *Metric) HistoryWithContext(ctx context.Context, params core.Params) (core.RecordSet, error) {
	headers := []http.Header{{
		core.HeaderAccept: []string{core.ContentTypeMsgpack},
	}}
	path := m.GetResourcePath() + "history"
	return core.RequestWithHeaders[core.RecordSet](ctx, m, http.MethodGet, path, params, nil, headers)
}

// History fetches a metric history series using the bound REST context.
func (m *Metric) History(params core.Params) (core.RecordSet, error) {
	return m.HistoryWithContext(m.Rest.GetCtx(), params)
}
