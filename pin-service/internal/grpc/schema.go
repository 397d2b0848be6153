package grpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ProtoFile is the registered path of the pin.v1 schema. proto/pin/v1/pin.proto
// holds the same definitions in source form.
const ProtoFile = "pin/v1/pin.proto"

var pinFile protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(pinFileProto(), nil)
	if err != nil {
		panic(fmt.Sprintf("invalid %s descriptor: %v", ProtoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", ProtoFile, err))
	}
	pinFile = fd
}

func pinFileProto() *descriptorpb.FileDescriptorProto {
	const (
		str     = descriptorpb.FieldDescriptorProto_TYPE_STRING
		i32     = descriptorpb.FieldDescriptorProto_TYPE_INT32
		u64     = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		boolean = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoFile),
		Package: proto.String("pin.v1"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/weiawesome/wes-io-live/proto/pin/v1;pinv1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			message("NextPinsRequest",
				field("stream_id", 1, str),
				field("count", 2, i32)),
			message("NextPinsResponse",
				field("stream_id", 1, str),
				repeated("pins", 2, str),
				field("generation", 3, u64)),
			message("ValidatePinRequest",
				field("pin", 1, str)),
			message("ValidatePinResponse",
				field("valid", 1, boolean),
				field("reason", 2, str)),
			message("StreamStatusRequest",
				field("stream_id", 1, str)),
			message("StreamStatusResponse",
				field("stream_id", 1, str),
				field("index", 2, u64),
				field("generation", 3, u64),
				field("space_size", 4, u64),
				field("remaining", 5, u64),
				field("length", 6, i32),
				field("alphabet", 7, str)),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("PinService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("NextPins"),
				method("ValidatePin"),
				method("StreamStatus"),
			},
		}},
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeated(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	f := field(name, number, typ)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func method(name string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(".pin.v1." + name + "Request"),
		OutputType: proto.String(".pin.v1." + name + "Response"),
	}
}

// wire is a pin.v1 message on the wire.
type wire struct {
	msg *dynamicpb.Message
}

func newWire(name protoreflect.Name) wire {
	md := pinFile.Messages().ByName(name)
	if md == nil {
		panic(fmt.Sprintf("pin.v1 has no message %s", name))
	}
	return wire{msg: dynamicpb.NewMessage(md)}
}

func (w wire) field(name protoreflect.Name) protoreflect.FieldDescriptor {
	fd := w.msg.Descriptor().Fields().ByName(name)
	if fd == nil {
		panic(fmt.Sprintf("%s has no field %s", w.msg.Descriptor().FullName(), name))
	}
	return fd
}

func (w wire) setString(name protoreflect.Name, v string) {
	w.msg.Set(w.field(name), protoreflect.ValueOfString(v))
}

func (w wire) setInt32(name protoreflect.Name, v int32) {
	w.msg.Set(w.field(name), protoreflect.ValueOfInt32(v))
}

func (w wire) setUint64(name protoreflect.Name, v uint64) {
	w.msg.Set(w.field(name), protoreflect.ValueOfUint64(v))
}

func (w wire) setBool(name protoreflect.Name, v bool) {
	w.msg.Set(w.field(name), protoreflect.ValueOfBool(v))
}

func (w wire) setStrings(name protoreflect.Name, vs []string) {
	if len(vs) == 0 {
		return
	}
	list := w.msg.Mutable(w.field(name)).List()
	for _, v := range vs {
		list.Append(protoreflect.ValueOfString(v))
	}
}

func (w wire) getString(name protoreflect.Name) string {
	return w.msg.Get(w.field(name)).String()
}

func (w wire) getInt32(name protoreflect.Name) int32 {
	return int32(w.msg.Get(w.field(name)).Int())
}

func (w wire) getUint64(name protoreflect.Name) uint64 {
	return w.msg.Get(w.field(name)).Uint()
}

func (w wire) getBool(name protoreflect.Name) bool {
	return w.msg.Get(w.field(name)).Bool()
}

func (w wire) getStrings(name protoreflect.Name) []string {
	list := w.msg.Get(w.field(name)).List()
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}
