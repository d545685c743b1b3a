// Package remoteop schedules remote operations on storage node agents and
// reports their completion asynchronously.
package remoteop

import (
	"fmt"
	"time"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

// Params are handed unchanged to every node of a cluster-wide step.
type Params struct {
	Seeds      []string `json:"seeds,omitempty"`
	RunRepair  bool     `json:"runRepair,omitempty"`
	CQLPort    int      `json:"cqlPort,omitempty"`
	GossipPort int      `json:"gossipPort,omitempty"`
}

func (p Params) Clone() Params {
	p.Seeds = append([]string(nil), p.Seeds...)
	return p
}

// Request is a remote operation to run on Target. Node is the address of
// the storage node moved by the workflow the operation belongs to, so that
// the completion can resume that workflow.
type Request struct {
	ID        types.OperationID
	Kind      types.OperationKind
	Target    string
	Node      string
	Params    Params
	Timeout   time.Duration
	Initiator string
}

// Ref returns the reference recorded on nodes when the operation fails.
func (req Request) Ref() meta.OperationRef {
	return meta.OperationRef{ID: req.ID, Kind: req.Kind, Target: req.Target}
}

// Next returns a copy of the request for the same step on another target.
func (req Request) Next(target string) Request {
	next := req
	next.ID = 0
	next.Target = target
	next.Params = req.Params.Clone()
	return next
}

func (req Request) String() string {
	return fmt.Sprintf("%s(target=%s, node=%s, id=%s)", req.Kind, req.Target, req.Node, req.ID)
}

// Completion reports the status of a scheduled request.
type Completion struct {
	Request     Request
	Status      types.OperationStatus
	Message     string
	ScheduledAt time.Time
	FinishedAt  time.Time
}

func (c Completion) Duration() time.Duration {
	if c.FinishedAt.IsZero() || c.ScheduledAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.ScheduledAt)
}
