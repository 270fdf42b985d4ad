package grpcservice

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client for the History service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection. Calls are sent with the JSON
// codec, so the connection needs no special dial options.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, in *SearchRequest) (*SearchResponse, error) {
	return invoke[SearchResponse](ctx, c, "Search", in)
}

func (c *Client) Get(ctx context.Context, in *EntryRequest) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c, "Get", in)
}

func (c *Client) Copy(ctx context.Context, in *CopyRequest) (*Empty, error) {
	return invoke[Empty](ctx, c, "Copy", in)
}

func (c *Client) Paste(ctx context.Context, in *CopyRequest) (*Empty, error) {
	return invoke[Empty](ctx, c, "Paste", in)
}

func (c *Client) TogglePin(ctx context.Context, in *EntryRequest) (*PinResponse, error) {
	return invoke[PinResponse](ctx, c, "TogglePin", in)
}

func (c *Client) Delete(ctx context.Context, in *EntryRequest) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c, "Delete", in)
}

func (c *Client) Update(ctx context.Context, in *UpdateRequest) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c, "Update", in)
}

func (c *Client) ListIgnoredApps(ctx context.Context) (*IgnoredAppsResponse, error) {
	return invoke[IgnoredAppsResponse](ctx, c, "ListIgnoredApps", &Empty{})
}

func (c *Client) AddIgnoredApp(ctx context.Context, in *IgnoredAppRequest) (*Empty, error) {
	return invoke[Empty](ctx, c, "AddIgnoredApp", in)
}

func (c *Client) RemoveIgnoredApp(ctx context.Context, in *IgnoredAppRequest) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c, "RemoveIgnoredApp", in)
}

func (c *Client) GetSetting(ctx context.Context, in *SettingRequest) (*SettingResponse, error) {
	return invoke[SettingResponse](ctx, c, "GetSetting", in)
}

func (c *Client) SetSetting(ctx context.Context, in *SettingRequest) (*SettingResponse, error) {
	return invoke[SettingResponse](ctx, c, "SetSetting", in)
}

func (c *Client) Cleanup(ctx context.Context, in *CleanupRequest) (*CleanupResponse, error) {
	return invoke[CleanupResponse](ctx, c, "Cleanup", in)
}

func (c *Client) SetMonitor(ctx context.Context, in *MonitorRequest) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c, "SetMonitor", in)
}

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c, "Status", &Empty{})
}

// WatchClient is the client side of a Watch stream.
type WatchClient struct {
	stream grpc.ClientStream
}

// Watch opens an event stream. Cancel ctx to end it.
func (c *Client) Watch(ctx context.Context, in *WatchRequest) (*WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Watch"), grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchClient{stream: stream}, nil
}

// Recv blocks for the next event. It returns io.EOF when the server ends the
// stream.
func (w *WatchClient) Recv() (*WatchEvent, error) {
	ev := new(WatchEvent)
	if err := w.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}
