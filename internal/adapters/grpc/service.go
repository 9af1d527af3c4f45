package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name of the UI bridge
const ServiceName = "bplog.v1.ReadingService"

// ProtoFile is the descriptor path under which the service is registered
const ProtoFile = "bplog/v1/reading_service.proto"

func init() {
	if err := registerFile(protoregistry.GlobalFiles); err != nil {
		panic(err)
	}
}

// registerFile adds the service descriptor to files so gRPC reflection can
// describe it. Registering twice is a no-op.
func registerFile(files *protoregistry.Files) error {
	if _, err := files.FindFileByPath(ProtoFile); err == nil {
		return nil
	}

	fd, err := protodesc.NewFile(fileDescriptorProto(), files)
	if err != nil {
		return fmt.Errorf("build %s: %w", ProtoFile, err)
	}
	return files.RegisterFile(fd)
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	rpc := func(name string, in, out protoreflect.FullName) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String("." + string(in)),
			OutputType: proto.String("." + string(out)),
		}
	}

	var (
		structMsg = (&structpb.Struct{}).ProtoReflect().Descriptor().FullName()
		listMsg   = (&structpb.ListValue{}).ProtoReflect().Descriptor().FullName()
		stringMsg = (&wrapperspb.StringValue{}).ProtoReflect().Descriptor().FullName()
		boolMsg   = (&wrapperspb.BoolValue{}).ProtoReflect().Descriptor().FullName()
		emptyMsg  = (&emptypb.Empty{}).ProtoReflect().Descriptor().FullName()
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoFile),
		Package: proto.String("bplog.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("ReadingService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				rpc("CreateReading", structMsg, structMsg),
				rpc("UpdateReading", structMsg, structMsg),
				rpc("DeleteReading", stringMsg, boolMsg),
				rpc("ClearReadings", emptyMsg, emptyMsg),
				rpc("GetReading", stringMsg, structMsg),
				rpc("ListReadings", emptyMsg, listMsg),
				rpc("GetStats", emptyMsg, structMsg),
				rpc("GetExportRows", emptyMsg, listMsg),
				rpc("GetChartSeries", emptyMsg, structMsg),
			},
		}},
	}
}

// ReadingServiceServer is the bridge an out-of-process UI drives the store through.
// Messages are protobuf well-known types so no generated code is needed.
type ReadingServiceServer interface {
	CreateReading(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateReading(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteReading(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	ClearReadings(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetReading(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListReadings(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetExportRows(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetChartSeries(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes ReadingService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReadingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateReading", func(s ReadingServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.CreateReading(ctx, in)
		}),
		unaryMethod("UpdateReading", func(s ReadingServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.UpdateReading(ctx, in)
		}),
		unaryMethod("DeleteReading", func(s ReadingServiceServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
			return s.DeleteReading(ctx, in)
		}),
		unaryMethod("ClearReadings", func(s ReadingServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
			return s.ClearReadings(ctx, in)
		}),
		unaryMethod("GetReading", func(s ReadingServiceServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
			return s.GetReading(ctx, in)
		}),
		unaryMethod("ListReadings", func(s ReadingServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
			return s.ListReadings(ctx, in)
		}),
		unaryMethod("GetStats", func(s ReadingServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
			return s.GetStats(ctx, in)
		}),
		unaryMethod("GetExportRows", func(s ReadingServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
			return s.GetExportRows(ctx, in)
		}),
		unaryMethod("GetChartSeries", func(s ReadingServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
			return s.GetChartSeries(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

// RegisterReadingServiceServer registers srv on s
func RegisterReadingServiceServer(s grpc.ServiceRegistrar, srv ReadingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryMethod adapts a typed call into a grpc.MethodDesc handler
func unaryMethod[Req proto.Message](name string, call func(ReadingServiceServer, context.Context, Req) (proto.Message, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newMessage[Req]()
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(ReadingServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// newMessage allocates the concrete message behind the pointer type M
func newMessage[M proto.Message]() M {
	var zero M
	return zero.ProtoReflect().Type().New().Interface().(M)
}

// Client calls ReadingService over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a bridge client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp proto.Message](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts ...grpc.CallOption) (Resp, error) {
	out := newMessage[Resp]()
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}

func (c *Client) CreateReading(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[*structpb.Struct](ctx, c.cc, "CreateReading", in, opts...)
}

func (c *Client) UpdateReading(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[*structpb.Struct](ctx, c.cc, "UpdateReading", in, opts...)
}

func (c *Client) DeleteReading(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke[*wrapperspb.BoolValue](ctx, c.cc, "DeleteReading", in, opts...)
}

func (c *Client) ClearReadings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[*emptypb.Empty](ctx, c.cc, "ClearReadings", in, opts...)
}

func (c *Client) GetReading(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[*structpb.Struct](ctx, c.cc, "GetReading", in, opts...)
}

func (c *Client) ListReadings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[*structpb.ListValue](ctx, c.cc, "ListReadings", in, opts...)
}

func (c *Client) GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[*structpb.Struct](ctx, c.cc, "GetStats", in, opts...)
}

func (c *Client) GetExportRows(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[*structpb.ListValue](ctx, c.cc, "GetExportRows", in, opts...)
}

func (c *Client) GetChartSeries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[*structpb.Struct](ctx, c.cc, "GetChartSeries", in, opts...)
}
