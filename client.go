package verge_client

import (
	"github.com/verge-io/go-verge-client/core"
	"github.com/verge-io/go-verge-client/rest"
)

type (
	VergeConfig                   = core.VergeConfig
	Params                        = core.Params
	Record                        = core.Record
	RecordSet                     = core.RecordSet
	Renderable                    = core.Renderable
	UntypedVergeRest              = rest.UntypedVergeRest
	VergeResourceAPI              = core.VergeResourceAPI
	VergeResourceAPIWithContext   = core.VergeResourceAPIWithContext
	InterceptableVergeResourceAPI = core.InterceptableVergeResourceAPI

	JobHandle            = core.JobHandle
	JobKind              = core.JobKind
	PollPolicy           = core.PollPolicy
	ProgressEvent        = core.ProgressEvent
	ProgressFunc         = core.ProgressFunc
	TransferSession      = core.TransferSession
	TransferProgressFunc = core.TransferProgressFunc
)

func NewUntypedVergeRest(config *VergeConfig) (*UntypedVergeRest, error) {
	return rest.NewUntypedVergeRest(config)
}
