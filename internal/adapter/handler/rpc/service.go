package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "inheritance.v1.LedgerService"

const (
	LedgerService_Deploy_FullMethodName    = "/" + serviceName + "/Deploy"
	LedgerService_Deposit_FullMethodName   = "/" + serviceName + "/Deposit"
	LedgerService_Withdraw_FullMethodName  = "/" + serviceName + "/Withdraw"
	LedgerService_Inherit_FullMethodName   = "/" + serviceName + "/Inherit"
	LedgerService_GetLedger_FullMethodName = "/" + serviceName + "/GetLedger"
)

type LedgerServiceServer interface {
	Deploy(context.Context, *DeployRequest) (*LedgerReply, error)
	Deposit(context.Context, *DepositRequest) (*LedgerReply, error)
	Withdraw(context.Context, *WithdrawRequest) (*LedgerReply, error)
	Inherit(context.Context, *InheritRequest) (*LedgerReply, error)
	GetLedger(context.Context, *GetLedgerRequest) (*LedgerReply, error)
}

// UnimplementedLedgerServiceServer can be embedded to have forward compatible implementations.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) Deploy(context.Context, *DeployRequest) (*LedgerReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Deploy not implemented")
}
func (UnimplementedLedgerServiceServer) Deposit(context.Context, *DepositRequest) (*LedgerReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Deposit not implemented")
}
func (UnimplementedLedgerServiceServer) Withdraw(context.Context, *WithdrawRequest) (*LedgerReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Withdraw not implemented")
}
func (UnimplementedLedgerServiceServer) Inherit(context.Context, *InheritRequest) (*LedgerReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Inherit not implemented")
}
func (UnimplementedLedgerServiceServer) GetLedger(context.Context, *GetLedgerRequest) (*LedgerReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLedger not implemented")
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodDesc.Handler (grpc.MethodHandler in newer grpc).
func unaryHandler[Req any](fullMethod string, call func(LedgerServiceServer, context.Context, *Req) (*LedgerReply, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Deploy",
			Handler:    unaryHandler(LedgerService_Deploy_FullMethodName, LedgerServiceServer.Deploy),
		},
		{
			MethodName: "Deposit",
			Handler:    unaryHandler(LedgerService_Deposit_FullMethodName, LedgerServiceServer.Deposit),
		},
		{
			MethodName: "Withdraw",
			Handler:    unaryHandler(LedgerService_Withdraw_FullMethodName, LedgerServiceServer.Withdraw),
		},
		{
			MethodName: "Inherit",
			Handler:    unaryHandler(LedgerService_Inherit_FullMethodName, LedgerServiceServer.Inherit),
		},
		{
			MethodName: "GetLedger",
			Handler:    unaryHandler(LedgerService_GetLedger_FullMethodName, LedgerServiceServer.GetLedger),
		},
	},
	Streams: []grpc.StreamDesc{},
}

type LedgerServiceClient interface {
	Deploy(ctx context.Context, in *DeployRequest, opts ...grpc.CallOption) (*LedgerReply, error)
	Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*LedgerReply, error)
	Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*LedgerReply, error)
	Inherit(ctx context.Context, in *InheritRequest, opts ...grpc.CallOption) (*LedgerReply, error)
	GetLedger(ctx context.Context, in *GetLedgerRequest, opts ...grpc.CallOption) (*LedgerReply, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc}
}

func (c *ledgerServiceClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*LedgerReply, error) {
	out := new(LedgerReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) Deploy(ctx context.Context, in *DeployRequest, opts ...grpc.CallOption) (*LedgerReply, error) {
	return c.invoke(ctx, LedgerService_Deploy_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*LedgerReply, error) {
	return c.invoke(ctx, LedgerService_Deposit_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*LedgerReply, error) {
	return c.invoke(ctx, LedgerService_Withdraw_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) Inherit(ctx context.Context, in *InheritRequest, opts ...grpc.CallOption) (*LedgerReply, error) {
	return c.invoke(ctx, LedgerService_Inherit_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetLedger(ctx context.Context, in *GetLedgerRequest, opts ...grpc.CallOption) (*LedgerReply, error) {
	return c.invoke(ctx, LedgerService_GetLedger_FullMethodName, in, opts)
}
