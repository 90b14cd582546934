package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorkforceServiceName は gRPC のサービス名です。
const WorkforceServiceName = "workforce.v1.WorkforceService"

// WorkforceServer は WorkforceService のサーバー側インターフェースです。
// リクエストとレスポンスは google.protobuf.Struct で表現します。
type WorkforceServer interface {
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TerminateAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AssignJobToShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteShift(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddFlavorToStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateFlavor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteFlavor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteJob(context.Context, *structpb.Struct) (*structpb.Struct, error)

	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployeeProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAssignments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShifts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStores(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFlavors(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterWorkforceServer は srv を WorkforceService として登録します。
func RegisterWorkforceServer(s grpc.ServiceRegistrar, srv WorkforceServer) {
	s.RegisterService(&WorkforceServiceDesc, srv)
}

// FullMethod は method の完全なメソッド名を返します。
func FullMethod(method string) string {
	return "/" + WorkforceServiceName + "/" + method
}

type structMethod func(WorkforceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call structMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(WorkforceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// WorkforceServiceDesc は WorkforceService のサービス定義です。
var WorkforceServiceDesc = grpc.ServiceDesc{
	ServiceName: WorkforceServiceName,
	HandlerType: (*WorkforceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateEmployee", WorkforceServer.CreateEmployee),
		unary("UpdateEmployee", WorkforceServer.UpdateEmployee),
		unary("DeleteEmployee", WorkforceServer.DeleteEmployee),
		unary("CreateAccount", WorkforceServer.CreateAccount),
		unary("CreateAssignment", WorkforceServer.CreateAssignment),
		unary("TerminateAssignment", WorkforceServer.TerminateAssignment),
		unary("DeleteAssignment", WorkforceServer.DeleteAssignment),
		unary("CreateShift", WorkforceServer.CreateShift),
		unary("StartShift", WorkforceServer.StartShift),
		unary("EndShift", WorkforceServer.EndShift),
		unary("AssignJobToShift", WorkforceServer.AssignJobToShift),
		unary("DeleteShift", WorkforceServer.DeleteShift),
		unary("CreateStore", WorkforceServer.CreateStore),
		unary("UpdateStore", WorkforceServer.UpdateStore),
		unary("AddFlavorToStore", WorkforceServer.AddFlavorToStore),
		unary("CreateFlavor", WorkforceServer.CreateFlavor),
		unary("CreateJob", WorkforceServer.CreateJob),
		unary("DeleteStore", WorkforceServer.DeleteStore),
		unary("DeleteFlavor", WorkforceServer.DeleteFlavor),
		unary("DeleteJob", WorkforceServer.DeleteJob),
		unary("GetEmployee", WorkforceServer.GetEmployee),
		unary("GetEmployeeProfile", WorkforceServer.GetEmployeeProfile),
		unary("ListEmployees", WorkforceServer.ListEmployees),
		unary("GetAssignment", WorkforceServer.GetAssignment),
		unary("ListAssignments", WorkforceServer.ListAssignments),
		unary("GetShift", WorkforceServer.GetShift),
		unary("ListShifts", WorkforceServer.ListShifts),
		unary("ListStores", WorkforceServer.ListStores),
		unary("ListJobs", WorkforceServer.ListJobs),
		unary("ListFlavors", WorkforceServer.ListFlavors),
	},
	Streams: []grpc.StreamDesc{},
}

// WorkforceClient は WorkforceService の薄いクライアントです。
type WorkforceClient struct {
	cc grpc.ClientConnInterface
}

// NewWorkforceClient は WorkforceClient を生成します。
func NewWorkforceClient(cc grpc.ClientConnInterface) *WorkforceClient {
	return &WorkforceClient{cc: cc}
}

// Call は method を呼び出し、レスポンスを返します。
func (c *WorkforceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
