package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "pin.v1.PinService"

const (
	methodNextPins     = "/" + ServiceName + "/NextPins"
	methodValidatePin  = "/" + ServiceName + "/ValidatePin"
	methodStreamStatus = "/" + ServiceName + "/StreamStatus"
)

type NextPinsRequest struct {
	StreamID string
	Count    int32
}

func (m *NextPinsRequest) toWire() wire {
	w := newWire("NextPinsRequest")
	w.setString("stream_id", m.StreamID)
	w.setInt32("count", m.Count)
	return w
}

func (m *NextPinsRequest) fromWire(w wire) {
	m.StreamID = w.getString("stream_id")
	m.Count = w.getInt32("count")
}

type NextPinsResponse struct {
	StreamID   string
	Pins       []string
	Generation uint64
}

func (m *NextPinsResponse) toWire() wire {
	w := newWire("NextPinsResponse")
	w.setString("stream_id", m.StreamID)
	w.setStrings("pins", m.Pins)
	w.setUint64("generation", m.Generation)
	return w
}

func (m *NextPinsResponse) fromWire(w wire) {
	m.StreamID = w.getString("stream_id")
	m.Pins = w.getStrings("pins")
	m.Generation = w.getUint64("generation")
}

type ValidatePinRequest struct {
	Pin string
}

func (m *ValidatePinRequest) toWire() wire {
	w := newWire("ValidatePinRequest")
	w.setString("pin", m.Pin)
	return w
}

func (m *ValidatePinRequest) fromWire(w wire) {
	m.Pin = w.getString("pin")
}

type ValidatePinResponse struct {
	Valid  bool
	Reason string
}

func (m *ValidatePinResponse) toWire() wire {
	w := newWire("ValidatePinResponse")
	w.setBool("valid", m.Valid)
	w.setString("reason", m.Reason)
	return w
}

func (m *ValidatePinResponse) fromWire(w wire) {
	m.Valid = w.getBool("valid")
	m.Reason = w.getString("reason")
}

type StreamStatusRequest struct {
	StreamID string
}

func (m *StreamStatusRequest) toWire() wire {
	w := newWire("StreamStatusRequest")
	w.setString("stream_id", m.StreamID)
	return w
}

func (m *StreamStatusRequest) fromWire(w wire) {
	m.StreamID = w.getString("stream_id")
}

type StreamStatusResponse struct {
	StreamID   string
	Index      uint64
	Generation uint64
	SpaceSize  uint64
	Remaining  uint64
	Length     int32
	Alphabet   string
}

func (m *StreamStatusResponse) toWire() wire {
	w := newWire("StreamStatusResponse")
	w.setString("stream_id", m.StreamID)
	w.setUint64("index", m.Index)
	w.setUint64("generation", m.Generation)
	w.setUint64("space_size", m.SpaceSize)
	w.setUint64("remaining", m.Remaining)
	w.setInt32("length", m.Length)
	w.setString("alphabet", m.Alphabet)
	return w
}

func (m *StreamStatusResponse) fromWire(w wire) {
	m.StreamID = w.getString("stream_id")
	m.Index = w.getUint64("index")
	m.Generation = w.getUint64("generation")
	m.SpaceSize = w.getUint64("space_size")
	m.Remaining = w.getUint64("remaining")
	m.Length = w.getInt32("length")
	m.Alphabet = w.getString("alphabet")
}

// PinServiceServer is the server API for pin.v1.PinService.
type PinServiceServer interface {
	NextPins(context.Context, *NextPinsRequest) (*NextPinsResponse, error)
	ValidatePin(context.Context, *ValidatePinRequest) (*ValidatePinResponse, error)
	StreamStatus(context.Context, *StreamStatusRequest) (*StreamStatusResponse, error)
}

// RegisterPinServiceServer registers srv on s.
func RegisterPinServiceServer(s grpc.ServiceRegistrar, srv PinServiceServer) {
	s.RegisterService(&PinServiceDesc, srv)
}

// PinServiceDesc describes pin.v1.PinService for grpc.Server. Handlers see
// the Go request structs; the codec sees pin.v1 protobuf messages.
var PinServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PinServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "NextPins", Handler: nextPinsHandler},
		{MethodName: "ValidatePin", Handler: validatePinHandler},
		{MethodName: "StreamStatus", Handler: streamStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

func nextPinsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := newWire("NextPinsRequest")
	if err := dec(in.msg); err != nil {
		return nil, err
	}
	req := new(NextPinsRequest)
	req.fromWire(in)

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := srv.(PinServiceServer).NextPins(ctx, req.(*NextPinsRequest))
		if err != nil {
			return nil, err
		}
		return resp.toWire().msg, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodNextPins}
	return interceptor(ctx, req, info, handler)
}

func validatePinHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := newWire("ValidatePinRequest")
	if err := dec(in.msg); err != nil {
		return nil, err
	}
	req := new(ValidatePinRequest)
	req.fromWire(in)

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := srv.(PinServiceServer).ValidatePin(ctx, req.(*ValidatePinRequest))
		if err != nil {
			return nil, err
		}
		return resp.toWire().msg, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodValidatePin}
	return interceptor(ctx, req, info, handler)
}

func streamStatusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := newWire("StreamStatusRequest")
	if err := dec(in.msg); err != nil {
		return nil, err
	}
	req := new(StreamStatusRequest)
	req.fromWire(in)

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := srv.(PinServiceServer).StreamStatus(ctx, req.(*StreamStatusRequest))
		if err != nil {
			return nil, err
		}
		return resp.toWire().msg, nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStreamStatus}
	return interceptor(ctx, req, info, handler)
}

// PinServiceClient is the client API for pin.v1.PinService.
type PinServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPinServiceClient(cc grpc.ClientConnInterface) *PinServiceClient {
	return &PinServiceClient{cc: cc}
}

func (c *PinServiceClient) NextPins(ctx context.Context, in *NextPinsRequest, opts ...grpc.CallOption) (*NextPinsResponse, error) {
	out := newWire("NextPinsResponse")
	if err := c.cc.Invoke(ctx, methodNextPins, in.toWire().msg, out.msg, opts...); err != nil {
		return nil, err
	}
	resp := new(NextPinsResponse)
	resp.fromWire(out)
	return resp, nil
}

func (c *PinServiceClient) ValidatePin(ctx context.Context, in *ValidatePinRequest, opts ...grpc.CallOption) (*ValidatePinResponse, error) {
	out := newWire("ValidatePinResponse")
	if err := c.cc.Invoke(ctx, methodValidatePin, in.toWire().msg, out.msg, opts...); err != nil {
		return nil, err
	}
	resp := new(ValidatePinResponse)
	resp.fromWire(out)
	return resp, nil
}

func (c *PinServiceClient) StreamStatus(ctx context.Context, in *StreamStatusRequest, opts ...grpc.CallOption) (*StreamStatusResponse, error) {
	out := newWire("StreamStatusResponse")
	if err := c.cc.Invoke(ctx, methodStreamStatus, in.toWire().msg, out.msg, opts...); err != nil {
		return nil, err
	}
	resp := new(StreamStatusResponse)
	resp.fromWire(out)
	return resp, nil
}
