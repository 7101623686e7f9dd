package payload

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/status"
)

// JSONOptions mirrors the four knobs the original Protobuf-JSON conversion
// utility exposes (§4.5).
type JSONOptions struct {
	AddWhitespace                   bool
	EnumAsInts                      bool
	PreserveProtoFieldNames         bool
	AlwaysPrintFieldsWithNoPresence bool
}

func (o JSONOptions) marshalOptions(resolver protoMessageResolver) protojson.MarshalOptions {
	opts := protojson.MarshalOptions{
		UseEnumNumbers:  o.EnumAsInts,
		UseProtoNames:   o.PreserveProtoFieldNames,
		EmitUnpopulated: o.AlwaysPrintFieldsWithNoPresence,
		Resolver:        resolver,
	}
	if o.AddWhitespace {
		opts.Multiline = true
		opts.Indent = "  "
	}
	return opts
}

// protoMessageResolver is the subset of protoregistry.Types protojson needs.
type protoMessageResolver interface {
	protoregistry.MessageTypeResolver
	protoregistry.ExtensionTypeResolver
}

// resolverFor returns the process-wide global type registry when msg's
// descriptor is already registered there (the common case for a message
// from a generated package that init()-registers itself), memoizing nothing
// extra since protoregistry.GlobalTypes is already a process-wide singleton.
// For a message whose descriptor lives outside the global pool (built via
// protodesc from a dynamically loaded FileDescriptorSet, for instance), a
// fresh one-off registry scoped to just that message type is built and
// handed back for this call only — the original's "resolver released after
// the call" behavior for non-global-pool messages (§4.5).
func resolverFor(msg proto.Message) protoMessageResolver {
	name := msg.ProtoReflect().Descriptor().FullName()
	if _, err := protoregistry.GlobalTypes.FindMessageByName(name); err == nil {
		return protoregistry.GlobalTypes
	}
	types := new(protoregistry.Types)
	_ = types.RegisterMessage(msg.ProtoReflect().Type())
	registerExtensions(types, msg.ProtoReflect())
	return types
}

func registerExtensions(types *protoregistry.Types, m protoreflect.Message) {
	m.Range(func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		if fd.IsExtension() {
			if xt, ok := fd.(protoreflect.ExtensionTypeDescriptor); ok {
				_ = types.RegisterExtension(xt.Type())
			}
		}
		return true
	})
}

// MarshalProtobufJSON renders msg as JSON text into buf.
func MarshalProtobufJSON(buf *buffer.Buffer, msg proto.Message, opts JSONOptions, errCode status.Code) error {
	data, err := opts.marshalOptions(resolverFor(msg)).Marshal(msg)
	if err != nil {
		return status.New(errCode, err)
	}
	buf.Write(data)
	return nil
}

// UnmarshalProtobufJSON parses buf's contents as JSON text into msg. An
// empty buffer (body-less tunneled request) is treated as "{}" so downstream
// parsing sees an empty message rather than failing on zero bytes.
func UnmarshalProtobufJSON(buf *buffer.Buffer, msg proto.Message, errCode status.Code) error {
	data := buf.Bytes()
	if len(data) == 0 {
		data = emptyJSONObject
	}
	opts := protojson.UnmarshalOptions{Resolver: resolverFor(msg), DiscardUnknown: true}
	if err := opts.Unmarshal(data, msg); err != nil {
		return status.New(errCode, err)
	}
	return nil
}

var emptyJSONObject = []byte("{}")

// MarshalThriftJSON renders msg using Thrift's own JSON protocol.
func MarshalThriftJSON(ctx context.Context, buf *buffer.Buffer, msg thrift.TStruct, errCode status.Code) error {
	transport := thrift.NewTMemoryBuffer()
	protocol := thrift.NewTJSONProtocol(transport)
	if err := msg.Write(ctx, protocol); err != nil {
		return status.New(errCode, err)
	}
	if err := protocol.Flush(ctx); err != nil {
		return status.New(errCode, err)
	}
	buf.Write(transport.Bytes())
	return nil
}

// UnmarshalThriftJSON parses buf's contents as Thrift JSON text into msg,
// synthesizing "{}" for an empty buffer exactly as UnmarshalProtobufJSON
// does.
func UnmarshalThriftJSON(ctx context.Context, buf *buffer.Buffer, msg thrift.TStruct, errCode status.Code) error {
	data := buf.Bytes()
	if len(data) == 0 {
		data = emptyJSONObject
	}
	transport := thrift.NewTMemoryBuffer()
	if _, err := transport.Write(data); err != nil {
		return status.New(errCode, err)
	}
	protocol := thrift.NewTJSONProtocol(transport)
	if err := msg.Read(ctx, protocol); err != nil {
		return status.New(errCode, err)
	}
	return nil
}
