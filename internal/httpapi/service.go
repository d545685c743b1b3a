package httpapi

//go:generate mockgen -build_flags -mod=vendor -self_package github.com/kakao/snorch/internal/httpapi -package httpapi -destination service_mock.go . Service

import (
	"context"

	"github.com/kakao/snorch/internal/orchestrator"
	"github.com/kakao/snorch/pkg/meta"
)

// Service is the part of the orchestrator exposed to operators.
type Service interface {
	ListNodes(ctx context.Context) ([]meta.StorageNode, error)
	GetNode(ctx context.Context, addr string) (meta.StorageNode, error)
	AddNode(ctx context.Context, candidate meta.StorageNode) error
	RemoveNode(ctx context.Context, addr string) error
	RunRepair(ctx context.Context, addrs []string) error
	RepairCluster(ctx context.Context) error
	ClusterSettings(ctx context.Context) (meta.ClusterSettings, error)
	UpdateClusterSettings(ctx context.Context, settings meta.ClusterSettings, newPassword string) error
	Status(ctx context.Context) (orchestrator.Status, error)
}

var _ Service = (*orchestrator.Orchestrator)(nil)
