package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

type nodesResponse struct {
	Nodes []meta.StorageNode `json:"nodes"`
}

type addNodeRequest struct {
	ResourceID meta.ResourceID `json:"resourceId,omitempty"`
}

type repairRequest struct {
	Addresses []string `json:"addresses,omitempty"`
}

type updateSettingsRequest struct {
	meta.ClusterSettings
	NewPassword string `json:"newPassword,omitempty"`
}

type acceptedResponse struct {
	Workflow types.Workflow `json:"workflow"`
	Nodes    []string       `json:"nodes,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	nodes, err := s.service.ListNodes(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []meta.StorageNode{}
	}
	s.writeJSON(w, http.StatusOK, nodesResponse{Nodes: nodes})
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	sn, err := s.service.GetNode(ctx, mux.Vars(r)["address"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sn)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	addr := mux.Vars(r)["address"]
	candidate := meta.StorageNode{Address: addr, ResourceID: req.ResourceID}
	if err := s.service.AddNode(ctx, candidate); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{
		Workflow: types.WorkflowDeployment,
		Nodes:    []string{addr},
	})
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	addr := mux.Vars(r)["address"]
	if err := s.service.RemoveNode(ctx, addr); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{
		Workflow: types.WorkflowUndeployment,
		Nodes:    []string{addr},
	})
}

// repair repairs the given nodes, or every NORMAL node if the request names
// none.
func (s *Server) repair(w http.ResponseWriter, r *http.Request) {
	var req repairRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	var err error
	if len(req.Addresses) == 0 {
		err = s.service.RepairCluster(ctx)
	} else {
		err = s.service.RunRepair(ctx, req.Addresses)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{
		Workflow: types.WorkflowRepair,
		Nodes:    req.Addresses,
	})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	settings, err := s.service.ClusterSettings(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.service.UpdateClusterSettings(ctx, req.ClusterSettings, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.service.ClusterSettings(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	st, err := s.service.Status(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.requestTimeout)
	}
	return context.WithCancel(r.Context())
}

// decodeBody decodes the JSON body of r into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("httpapi: decode request body: %v: %w", err, verrors.ErrInvalid)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, errCode := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	s.writeJSON(w, code, errorResponse{Code: errCode, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("could not write response", zap.Error(err))
	}
}
