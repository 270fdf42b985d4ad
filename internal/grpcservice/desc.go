package grpcservice

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "clipstream.v1.History"

// HistoryServer is the server API for the History service.
type HistoryServer interface {
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
	Get(context.Context, *EntryRequest) (*EntryResponse, error)
	Copy(context.Context, *CopyRequest) (*Empty, error)
	Paste(context.Context, *CopyRequest) (*Empty, error)
	TogglePin(context.Context, *EntryRequest) (*PinResponse, error)
	Delete(context.Context, *EntryRequest) (*DeleteResponse, error)
	Update(context.Context, *UpdateRequest) (*EntryResponse, error)
	ListIgnoredApps(context.Context, *Empty) (*IgnoredAppsResponse, error)
	AddIgnoredApp(context.Context, *IgnoredAppRequest) (*Empty, error)
	RemoveIgnoredApp(context.Context, *IgnoredAppRequest) (*DeleteResponse, error)
	GetSetting(context.Context, *SettingRequest) (*SettingResponse, error)
	SetSetting(context.Context, *SettingRequest) (*SettingResponse, error)
	Cleanup(context.Context, *CleanupRequest) (*CleanupResponse, error)
	SetMonitor(context.Context, *MonitorRequest) (*StatusResponse, error)
	Status(context.Context, *Empty) (*StatusResponse, error)
	Watch(*WatchRequest, WatchServer) error
}

// WatchServer is the server side of a Watch stream.
type WatchServer interface {
	Send(*WatchEvent) error
	Context() context.Context
}

// RegisterHistoryServer registers srv on s.
func RegisterHistoryServer(s grpc.ServiceRegistrar, srv HistoryServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Search", HistoryServer.Search),
		unary("Get", HistoryServer.Get),
		unary("Copy", HistoryServer.Copy),
		unary("Paste", HistoryServer.Paste),
		unary("TogglePin", HistoryServer.TogglePin),
		unary("Delete", HistoryServer.Delete),
		unary("Update", HistoryServer.Update),
		unary("ListIgnoredApps", HistoryServer.ListIgnoredApps),
		unary("AddIgnoredApp", HistoryServer.AddIgnoredApp),
		unary("RemoveIgnoredApp", HistoryServer.RemoveIgnoredApp),
		unary("GetSetting", HistoryServer.GetSetting),
		unary("SetSetting", HistoryServer.SetSetting),
		unary("Cleanup", HistoryServer.Cleanup),
		unary("SetMonitor", HistoryServer.SetMonitor),
		unary("Status", HistoryServer.Status),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds the method descriptor for one request/response call.
func unary[Req, Resp any](name string, call func(HistoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HistoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HistoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(HistoryServer).Watch(in, &watchServer{stream})
}

type watchServer struct {
	grpc.ServerStream
}

func (w *watchServer) Send(ev *WatchEvent) error { return w.ServerStream.SendMsg(ev) }
