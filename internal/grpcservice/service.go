// Package grpcservice implements the clipstream History gRPC service that CLI
// commands use to reach the daemon.
//
// Messages are plain Go structs carried by a JSON codec registered under the
// "json" content-subtype; the service descriptor is written by hand.
package grpcservice

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipstream/internal/core"
	"go.klb.dev/clipstream/internal/history"
	"go.klb.dev/clipstream/internal/hub"
)

// Service implements HistoryServer on top of a core.Core.
type Service struct {
	c        *core.Core
	watchers atomic.Uint64
}

// New returns a Service backed by c.
func New(c *core.Core) *Service {
	return &Service{c: c}
}

// NewServer returns a gRPC server with the History service registered and
// request logging installed.
func NewServer(c *core.Core, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logUnary))
	s := grpc.NewServer(opts...)
	RegisterHistoryServer(s, New(c))
	return s
}

func (s *Service) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	entries, err := s.c.Search(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SearchResponse{Entries: entries}, nil
}

func (s *Service) Get(ctx context.Context, req *EntryRequest) (*EntryResponse, error) {
	e, err := s.c.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EntryResponse{Entry: e}, nil
}

func (s *Service) Copy(ctx context.Context, req *CopyRequest) (*Empty, error) {
	if err := s.c.Copy(ctx, req.ID, core.ParseFormat(req.Format)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Service) Paste(ctx context.Context, req *CopyRequest) (*Empty, error) {
	if err := s.c.Paste(ctx, req.ID, core.ParseFormat(req.Format)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Service) TogglePin(ctx context.Context, req *EntryRequest) (*PinResponse, error) {
	pinned, err := s.c.TogglePin(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PinResponse{Pinned: pinned}, nil
}

func (s *Service) Delete(ctx context.Context, req *EntryRequest) (*DeleteResponse, error) {
	removed, err := s.c.Delete(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DeleteResponse{Removed: removed}, nil
}

func (s *Service) Update(ctx context.Context, req *UpdateRequest) (*EntryResponse, error) {
	if err := s.c.UpdateContent(ctx, req.ID, req.Content); err != nil {
		return nil, toStatus(err)
	}
	return s.Get(ctx, &EntryRequest{ID: req.ID})
}

func (s *Service) ListIgnoredApps(ctx context.Context, _ *Empty) (*IgnoredAppsResponse, error) {
	names, err := s.c.IgnoredApps(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &IgnoredAppsResponse{Names: names}, nil
}

func (s *Service) AddIgnoredApp(ctx context.Context, req *IgnoredAppRequest) (*Empty, error) {
	if err := s.c.AddIgnoredApp(ctx, req.Name); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Service) RemoveIgnoredApp(ctx context.Context, req *IgnoredAppRequest) (*DeleteResponse, error) {
	removed, err := s.c.RemoveIgnoredApp(ctx, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DeleteResponse{Removed: removed}, nil
}

func (s *Service) GetSetting(ctx context.Context, req *SettingRequest) (*SettingResponse, error) {
	v, ok, err := s.c.Setting(ctx, req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SettingResponse{Key: req.Key, Value: v, Found: ok}, nil
}

func (s *Service) SetSetting(ctx context.Context, req *SettingRequest) (*SettingResponse, error) {
	if err := s.c.SetSetting(ctx, req.Key, req.Value); err != nil {
		return nil, toStatus(err)
	}
	return &SettingResponse{Key: req.Key, Value: req.Value, Found: true}, nil
}

func (s *Service) Cleanup(ctx context.Context, req *CleanupRequest) (*CleanupResponse, error) {
	removed, err := s.c.Cleanup(ctx, req.MaxAgeDays, req.MaxEntries)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CleanupResponse{Removed: removed}, nil
}

func (s *Service) SetMonitor(ctx context.Context, req *MonitorRequest) (*StatusResponse, error) {
	if req.Enabled {
		s.c.StartMonitor()
	} else {
		s.c.StopMonitor()
	}
	return s.Status(ctx, &Empty{})
}

func (s *Service) Status(ctx context.Context, _ *Empty) (*StatusResponse, error) {
	st, err := s.c.Status(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &st, nil
}

// Watch streams history events until the client goes away.
func (s *Service) Watch(req *WatchRequest, stream WatchServer) error {
	id := "watch/" + strconv.FormatUint(s.watchers.Add(1), 10)
	sub := hub.NewChanSubscriber(id, hub.ParseKinds(req.Kinds), 16)

	s.c.Subscribe(sub)
	defer s.c.Unsubscribe(sub)

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case ev := <-sub.Events():
			if err := stream.Send(&WatchEvent{
				Kind:    ev.Kind,
				ID:      ev.ID,
				Entry:   ev.Entry,
				Removed: ev.Removed,
			}); err != nil {
				return err
			}
		}
	}
}

// toStatus maps store and core errors to gRPC status codes.
func toStatus(err error) error {
	var se *history.StorageError
	switch {
	case errors.Is(err, history.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, history.ErrEmptyContent), errors.Is(err, history.ErrEmptyKey):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, history.ErrDuplicateContent):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &se):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.Debug("rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
