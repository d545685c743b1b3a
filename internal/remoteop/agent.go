package remoteop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Agent performs a remote operation and returns once it is over.
type Agent interface {
	Run(ctx context.Context, req Request) error
}

// AgentFunc adapts a function to Agent.
type AgentFunc func(ctx context.Context, req Request) error

func (f AgentFunc) Run(ctx context.Context, req Request) error {
	return f(ctx, req)
}

const maxOutputInError = 512

// CommandAgent runs an operator supplied executable as
//
//	<path> <operation> <target>
//
// with the parameters of the request in SNORCH_* environment variables. A
// non-zero exit status fails the operation.
type CommandAgent struct {
	Path string
	Env  []string
}

var _ Agent = (*CommandAgent)(nil)

func (a *CommandAgent) Run(ctx context.Context, req Request) error {
	cmd := exec.CommandContext(ctx, a.Path, req.Kind.String(), req.Target)
	cmd.Env = append(append(os.Environ(), a.Env...), requestEnv(req)...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		out := strings.TrimSpace(output.String())
		if len(out) > maxOutputInError {
			out = out[len(out)-maxOutputInError:]
		}
		if out != "" {
			return errors.Wrapf(err, "%s: %s", a.Path, out)
		}
		return errors.Wrap(err, a.Path)
	}
	return nil
}

func requestEnv(req Request) []string {
	return []string{
		"SNORCH_OPERATION_ID=" + req.ID.String(),
		"SNORCH_OPERATION=" + req.Kind.String(),
		"SNORCH_TARGET=" + req.Target,
		"SNORCH_NODE=" + req.Node,
		"SNORCH_SEEDS=" + strings.Join(req.Params.Seeds, ","),
		"SNORCH_RUN_REPAIR=" + strconv.FormatBool(req.Params.RunRepair),
		fmt.Sprintf("SNORCH_CQL_PORT=%d", req.Params.CQLPort),
		fmt.Sprintf("SNORCH_GOSSIP_PORT=%d", req.Params.GossipPort),
		"SNORCH_TIMEOUT_SECONDS=" + strconv.FormatInt(int64(req.Timeout.Seconds()), 10),
	}
}
